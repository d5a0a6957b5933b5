package dtos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vnkhanh/rental-server/models"
)

type RoomRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Location     string          `json:"location" binding:"required,max=255"`
	ContactPhone string          `json:"contact_phone" binding:"max=15"`
	ContactEmail string          `json:"contact_email" binding:"omitempty,email"`
}

type RoomPatchRequest struct {
	Title        *string          `json:"title" binding:"omitempty,max=200"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Location     *string          `json:"location" binding:"omitempty,max=255"`
	ContactPhone *string          `json:"contact_phone" binding:"omitempty,max=15"`
	ContactEmail *string          `json:"contact_email" binding:"omitempty,email"`
}

type RoomResponse struct {
	ID             uint      `json:"id"`
	OwnerID        uint      `json:"owner"`
	OwnerName      string    `json:"owner_name,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          string    `json:"price"`
	Location       string    `json:"location"`
	Image          string    `json:"image"`
	ContactPhone   string    `json:"contact_phone"`
	ContactEmail   string    `json:"contact_email"`
	SuggestedPrice *string   `json:"suggested_price,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewRoomResponse(r models.Room) RoomResponse {
	out := RoomResponse{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Description:  r.Description,
		Price:        r.Price.StringFixed(2),
		Location:     r.Location,
		Image:        r.Image,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Owner.ID != 0 {
		out.OwnerName = r.Owner.DisplayName()
	}
	return out
}

func NewRoomList(rooms []models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, NewRoomResponse(r))
	}
	return out
}
