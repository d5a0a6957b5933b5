package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const (
	CtxUser = "user"
	CtxRoom = "roomObj"
)

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

// userFromToken resolves the token subject to an active user.
func userFromToken(db *gorm.DB, raw string) (*models.User, string) {
	claims, err := utils.VerifyToken(raw)
	if err != nil {
		return nil, "Invalid token"
	}
	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return nil, "Invalid subject"
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		return nil, "User not found"
	}
	if !user.IsActive {
		return nil, "User is inactive"
	}
	return &user, ""
}

// AuthJWT checks Authorization: Bearer <token>, loads the user and stores it under CtxUser.
func AuthJWT(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			utils.RespondErrorWithCode(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing or invalid Authorization header", nil)
			return
		}
		user, reason := userFromToken(db.WithContext(c.Request.Context()), raw)
		if user == nil {
			utils.RespondErrorWithCode(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized, reason, nil)
			return
		}
		c.Set(CtxUser, *user)
		c.Next()
	}
}

// OptionalAuth sets CtxUser when a valid token is present and never aborts.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if user, _ := userFromToken(db.WithContext(c.Request.Context()), raw); user != nil {
				c.Set(CtxUser, *user)
			}
		}
		c.Next()
	}
}

// RequireStaff blocks non-staff users. Must run after AuthJWT.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			utils.RespondErrorWithCode(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", nil)
			return
		}
		if !u.IsStaff {
			utils.RespondErrorWithCode(c, http.StatusForbidden, utils.ErrCodeForbidden, "Forbidden", nil)
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
