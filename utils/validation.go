package utils

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds custom tags to gin's validator engine:
//
//	ymd - a YYYY-MM-DD calendar date
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("ymd", validateYMD); err != nil {
			Logger.WithError(err).Error("register ymd validator")
		}
	})
}

func validateYMD(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}
