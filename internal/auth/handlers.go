package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/entities"
)

// LoginRequest carries credentials plus the portal the caller is
// signing in through. The portal determines which role the account
// must hold.
type LoginRequest struct {
	LibraryID string `json:"library_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Portal    string `json:"portal" binding:"required,oneof=admin student"`
}

// SignupRequest carries the fields for self-service student
// registration.
type SignupRequest struct {
	Name      string `json:"name" binding:"required"`
	LibraryID string `json:"library_id"`
	Password  string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        uint   `json:"id"`
	LibraryID string `json:"library_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

func toUserResponse(user *entities.User) userResponse {
	return userResponse{
		ID:        user.ID,
		LibraryID: user.LibraryID,
		Name:      user.Name,
		Role:      string(user.Role),
	}
}

// AuthAuditor records login and logout outcomes in the audit trail.
type AuthAuditor interface {
	LogAuth(userID uint, action string, success bool)
}

// Controller exposes the session endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	auditor        AuthAuditor
}

func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
	}
}

// SetAuditor enables audit logging of sign-in and sign-out (optional).
func (ctrl *Controller) SetAuditor(auditor AuthAuditor) {
	ctrl.auditor = auditor
}

func (ctrl *Controller) logAuth(userID uint, action string, success bool) {
	if ctrl.auditor != nil {
		ctrl.auditor.LogAuth(userID, action, success)
	}
}

// Login authenticates against the requested portal and establishes a
// session on success.
func (ctrl *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "library_id, password and portal are required"})
		return
	}

	user, err := ctrl.service.Authenticate(req.LibraryID, req.Password, entities.UserRole(req.Portal))
	if err != nil {
		// Failed attempts have no resolved account, so the event
		// carries user ID 0.
		ctrl.logAuth(0, "login", false)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": "invalid_credentials"})
		case errors.Is(err, ErrRoleMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "account does not have access to this portal", "code": "role_mismatch"})
		default:
			log.Printf("login failed for %q: %v", req.LibraryID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	if err := ctrl.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("failed to create session for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ctrl.logAuth(user.ID, "login", true)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// Signup registers a student account and signs it in.
func (ctrl *Controller) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}

	user, err := ctrl.service.Register(req.Name, req.LibraryID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateLibraryID):
			c.JSON(http.StatusConflict, gin.H{"error": "library ID is already taken", "code": "duplicate_library_id"})
		case errors.Is(err, ErrNameRequired), errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("signup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	if err := ctrl.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("failed to create session for new user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ctrl.logAuth(user.ID, "signup", true)
	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// Logout destroys the current session.
func (ctrl *Controller) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ctrl.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("failed to destroy session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	if userID != 0 {
		ctrl.logAuth(userID, "logout", true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the signed-in account.
func (ctrl *Controller) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
