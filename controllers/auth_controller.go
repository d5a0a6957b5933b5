package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type AuthController struct {
	users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// POST /api/auth/login/
func (ctl *AuthController) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := ctl.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  dtos.NewUserResponse(*user),
	})
}

// GET /api/user/
func (ctl *AuthController) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dtos.NewUserResponse(u))
}

// GET /api/profile/
func (ctl *AuthController) GetProfile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := ctl.users.GetProfile(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewProfileResponse(u, *profile))
}

// PUT /api/profile/
func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := ctl.users.UpdateProfile(c.Request.Context(), u.ID, services.ProfileInput{
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"profile": dtos.NewProfileResponse(u, *profile),
	})
}
