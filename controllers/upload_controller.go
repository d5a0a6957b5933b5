package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/utils"
)

const maxImageSize = 5 << 20

// POST /api/owner/rooms/:id/image/  (CheckRoomOwner, multipart field "file")
func (ctl *RoomController) UploadRoomImage(c *gin.Context) {
	room, _ := middleware.CurrentRoom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "file is required", err)
		return
	}
	if fileHeader.Size > maxImageSize {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeValidation, "file must be at most 5MB", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "cannot read file", err)
		return
	}
	defer f.Close()

	updated, err := ctl.rooms.UploadImage(c.Request.Context(), &room, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Upload successful",
		"url":     updated.Image,
		"room":    dtos.NewRoomResponse(*updated),
	})
}
