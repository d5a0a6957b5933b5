package dtos

import (
	"time"

	"github.com/vnkhanh/rental-server/models"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	Phone   *string `json:"phone" binding:"omitempty,max=15"`
	Address *string `json:"address"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Name      string    `json:"name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.DisplayName(),
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

type ProfileResponse struct {
	User          UserResponse `json:"user"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	EmailVerified bool         `json:"email_verified"`
}

func NewProfileResponse(u models.User, p models.UserProfile) ProfileResponse {
	return ProfileResponse{
		User:          NewUserResponse(u),
		Phone:         p.Phone,
		Address:       p.Address,
		EmailVerified: p.EmailVerified,
	}
}
