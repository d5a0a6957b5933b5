package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

// CheckRoomOwner loads the :id room into CtxRoom and requires the current
// user to own it.
func CheckRoomOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondErrorWithCode(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", nil)
			return
		}

		roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || roomID == 0 {
			utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid room id", err)
			return
		}

		var room models.Room
		if err := db.WithContext(c.Request.Context()).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondErrorWithCode(c, http.StatusNotFound, utils.ErrCodeNotFound, "Room not found", nil)
				return
			}
			utils.RespondErrorWithCode(c, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not load room", err)
			return
		}

		if room.OwnerID != user.ID {
			utils.Logger.WithFields(logrus.Fields{"user_id": user.ID, "room_id": room.ID, "owner_id": room.OwnerID}).
				Debug("room owner check failed")
			utils.RespondErrorWithCode(c, http.StatusForbidden, utils.ErrCodeForbidden, "You do not own this room", nil)
			return
		}

		c.Set(CtxRoom, room)
		c.Next()
	}
}

func CurrentRoom(c *gin.Context) (models.Room, bool) {
	v, ok := c.Get(CtxRoom)
	if !ok {
		return models.Room{}, false
	}
	r, ok := v.(models.Room)
	return r, ok
}
