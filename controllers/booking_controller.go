package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// POST /api/bookings/add/
func (ctl *BookingController) CreateBooking(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := ctl.bookings.CreateBooking(c.Request.Context(), u, services.CreateBookingInput{
		RoomID:    req.RoomID,
		StartDate: req.StartDate,
		Months:    req.Months,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.NewBookingResponse(*booking))
}

type bookingAction func(*services.BookingService, *gin.Context, models.User, uint) (*models.Booking, error)

func (ctl *BookingController) act(c *gin.Context, action bookingAction) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := action(ctl.bookings, c, u, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewBookingResponse(*booking))
}

// PUT /api/bookings/approve/:id/
func (ctl *BookingController) ApproveBooking(c *gin.Context) {
	ctl.act(c, func(s *services.BookingService, c *gin.Context, u models.User, id uint) (*models.Booking, error) {
		return s.Approve(c.Request.Context(), u, id)
	})
}

// PUT /api/bookings/reject/:id/
func (ctl *BookingController) RejectBooking(c *gin.Context) {
	ctl.act(c, func(s *services.BookingService, c *gin.Context, u models.User, id uint) (*models.Booking, error) {
		return s.Reject(c.Request.Context(), u, id)
	})
}

// PUT /api/bookings/cancel/:id/
func (ctl *BookingController) CancelBooking(c *gin.Context) {
	ctl.act(c, func(s *services.BookingService, c *gin.Context, u models.User, id uint) (*models.Booking, error) {
		return s.Cancel(c.Request.Context(), u, id)
	})
}

// GET /api/bookings/my/
func (ctl *BookingController) MyBookings(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.bookings.ListTenantBookings(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewBookingList(list))
}

// GET /api/bookings/received/
func (ctl *BookingController) ReceivedBookings(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.bookings.ListOwnerBookings(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewBookingList(list))
}
