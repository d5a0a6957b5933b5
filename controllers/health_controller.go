package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startedAt = time.Now()

// HealthCheck pings the database with a short timeout. It answers 503 when
// the database is unreachable.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"db":      db.Dialector.Name(),
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			body["status"] = "unavailable"
			body["error"] = "database unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

// Version is set at build time with -ldflags "-X .../controllers.Version=...".
var Version = "dev"
