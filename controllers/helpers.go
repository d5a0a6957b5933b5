package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

// currentUser returns the authenticated user or aborts with 401.
func currentUser(c *gin.Context) (models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondErrorWithCode(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", nil)
	}
	return u, ok
}

// paramID parses a positive integer path parameter or aborts with 400.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, err)
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request: "+err.Error(), err)
		return false
	}
	return true
}
