package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/rental-server/utils"
)

// bestEffort runs a side effect after the authoritative write has committed.
// Errors and panics are logged and swallowed.
func bestEffort(what string, fields logrus.Fields, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.WithFields(fields).WithError(fmt.Errorf("panic: %v", r)).Warnf("%s failed", what)
		}
	}()
	if err := fn(); err != nil {
		utils.Logger.WithFields(fields).WithError(err).Warnf("%s failed", what)
	}
}
