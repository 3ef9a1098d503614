package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/services"
)

type UsersController struct {
	members *services.MembershipService
}

func NewUsersController(members *services.MembershipService) *UsersController {
	return &UsersController{members: members}
}

type RegisterUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListUsers handles GET /api/users
func (uc *UsersController) ListUsers(c *gin.Context) {
	users, err := uc.members.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id
func (uc *UsersController) GetUser(c *gin.Context) {
	user, err := uc.members.GetUser(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterUser handles POST /api/users
func (uc *UsersController) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := uc.members.Register(req.Name, req.Email)
	if err != nil {
		respondServiceError(c, err, "register user")
		return
	}
	respondCreated(c, user)
}
