package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type RoomController struct {
	rooms     *services.RoomService
	predictor services.PricePredictor
}

func NewRoomController(rooms *services.RoomService, predictor services.PricePredictor) *RoomController {
	return &RoomController{rooms: rooms, predictor: predictor}
}

// GET /api/rooms/?search=&location=&page=&page_size=
func (ctl *RoomController) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rooms, total, err := ctl.rooms.ListRooms(c.Request.Context(), services.RoomFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": dtos.NewRoomList(rooms),
		"total":   total,
		"page":    page,
	})
}

// GET /api/rooms/:id/
func (ctl *RoomController) GetRoomDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := ctl.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	out := dtos.NewRoomResponse(*room)
	if price, err := ctl.predictor.PredictPrice(c.Request.Context(), room); err == nil {
		s := price.StringFixed(2)
		out.SuggestedPrice = &s
	} else {
		utils.Logger.WithError(err).WithField("room_id", room.ID).Warn("price prediction unavailable")
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/owner/rooms/
func (ctl *RoomController) ListMyRooms(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	rooms, err := ctl.rooms.ListOwnerRooms(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewRoomList(rooms))
}

// POST /api/owner/rooms/
func (ctl *RoomController) CreateRoom(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.RoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := ctl.rooms.CreateRoom(c.Request.Context(), u, services.RoomInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.NewRoomResponse(*room))
}

// PUT /api/owner/rooms/:id/  (CheckRoomOwner)
func (ctl *RoomController) UpdateRoom(c *gin.Context) {
	room, _ := middleware.CurrentRoom(c)
	var req dtos.RoomPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := ctl.rooms.UpdateRoom(c.Request.Context(), &room, services.RoomPatch{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewRoomResponse(*updated))
}

// DELETE /api/owner/rooms/:id/  (CheckRoomOwner)
func (ctl *RoomController) DeleteRoom(c *gin.Context) {
	room, _ := middleware.CurrentRoom(c)
	if err := ctl.rooms.DeleteRoom(c.Request.Context(), &room); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
