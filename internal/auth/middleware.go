package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/librarium/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser   = "auth_user"
	ContextKeyUserID = "auth_user_id"
	ContextKeyRole   = "auth_role"
)

// Middleware resolves the session into the acting user for each request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// Handler loads the session user, if any, into the Gin context. It
// never rejects: route groups decide what they require.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sessionManager.GetUserID(c.Request)
		if userID != 0 {
			user, err := m.service.GetUserByID(userID)
			if err == nil {
				c.Set(ContextKeyUser, user)
				c.Set(ContextKeyUserID, user.ID)
				c.Set(ContextKeyRole, user.Role)
			} else {
				// Stale session pointing at a deleted account
				_ = m.sessionManager.DestroySession(c.Request)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a logged-in user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose user does not hold the given role.
// The two roles are handled exhaustively; anything else is a bug.
func RequireRole(role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		switch user.Role {
		case role:
			c.Next()
		case entities.UserRoleAdmin, entities.UserRoleStudent:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient role",
				"code":  "role_mismatch",
			})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "unknown role",
			})
		}
	}
}

// RequireAdmin is shorthand for RequireRole(admin).
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin)
}

// CurrentUser returns the authenticated user from the Gin context, or
// nil when the request is anonymous.
func CurrentUser(c *gin.Context) *entities.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID extracts the authenticated user's ID, or 0 when anonymous.
func GetUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
