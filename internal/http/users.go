package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/entities"
)

type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	LibraryID string `json:"library_id"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required,userrole"`
}

// UpdateUserRequest uses pointers so absent fields are left untouched.
type UpdateUserRequest struct {
	Name      *string `json:"name"`
	LibraryID *string `json:"library_id"`
	Password  *string `json:"password"`
	Role      *string `json:"role" binding:"omitempty,userrole"`
}

// UsersController handles account administration. All routes are admin
// only; enforced by route middleware.
type UsersController struct {
	service *auth.Service
}

func NewUsersController(service *auth.Service) *UsersController {
	return &UsersController{service: service}
}

func (controller *UsersController) ListUsers(c *gin.Context) {
	users, err := controller.service.ListAccounts()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (controller *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.service.GetUserByID(id)
	if err != nil {
		respondDomainError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (controller *UsersController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, password and a valid role are required")
		return
	}

	user, err := controller.service.CreateAccount(req.Name, req.LibraryID, req.Password, entities.UserRole(req.Role))
	if err != nil {
		respondDomainError(c, err, "create user")
		return
	}

	respondCreated(c, user)
}

func (controller *UsersController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	update := auth.AccountUpdate{
		Name:      req.Name,
		LibraryID: req.LibraryID,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := entities.UserRole(*req.Role)
		update.Role = &role
	}

	user, err := controller.service.UpdateAccount(id, update)
	if err != nil {
		respondDomainError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (controller *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.DeleteAccount(id, auth.GetUserID(c)); err != nil {
		respondDomainError(c, err, "delete user")
		return
	}

	respondSuccess(c, "user deleted")
}
