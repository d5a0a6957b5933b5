package dtos

import (
	"time"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type CreateBookingRequest struct {
	RoomID    uint   `json:"room_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required,ymd"`
	Months    int    `json:"months" binding:"required"`
}

type BookingResponse struct {
	ID            uint      `json:"id"`
	RoomID        uint      `json:"room"`
	RoomTitle     string    `json:"room_title"`
	RoomLocation  string    `json:"room_location"`
	RoomPrice     string    `json:"room_price"`
	UserID        uint      `json:"user"`
	UserName      string    `json:"user_name"`
	OwnerID       uint      `json:"owner"`
	OwnerName     string    `json:"owner_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Months        int       `json:"months"`
	TotalRent     string    `json:"total_rent"`
	Status        string    `json:"status"`
	InvoiceID     *uint     `json:"invoice_id"`
	InvoiceStatus *string   `json:"invoice_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewBookingResponse expects Room, User and Owner to be loaded; Invoice is optional.
func NewBookingResponse(b models.Booking) BookingResponse {
	out := BookingResponse{
		ID:           b.ID,
		RoomID:       b.RoomID,
		RoomTitle:    b.Room.Title,
		RoomLocation: b.Room.Location,
		RoomPrice:    b.Room.Price.StringFixed(2),
		UserID:       b.UserID,
		UserName:     b.User.DisplayName(),
		OwnerID:      b.OwnerID,
		OwnerName:    b.Owner.DisplayName(),
		StartDate:    utils.FormatDate(b.StartDate),
		EndDate:      utils.FormatDate(b.EndDate),
		Months:       b.Months,
		TotalRent:    b.TotalRent.StringFixed(2),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Invoice != nil {
		id := b.Invoice.ID
		status := string(b.Invoice.Status)
		out.InvoiceID = &id
		out.InvoiceStatus = &status
	}
	return out
}

func NewBookingList(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingResponse(b))
	}
	return out
}
