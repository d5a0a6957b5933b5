package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode aborts the request with a JSON error body. devErr is logged, never sent.
func RespondErrorWithCode(c *gin.Context, status int, code, publicMessage string, devErr error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: publicMessage})

	entry := Logger.WithFields(logrus.Fields{
		"status":     status,
		"path":       c.FullPath(),
		"request_id": c.GetString("request_id"),
	})
	if devErr != nil {
		entry = entry.WithError(devErr)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(publicMessage)
	} else {
		entry.Info(publicMessage)
	}
}

// RespondError maps service errors onto HTTP responses.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(c, StatusFor(appErr.Kind), appErr.Code, appErr.Message, appErr.Err)
		return
	}
	RespondErrorWithCode(c, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", err)
}
