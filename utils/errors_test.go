package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NotFound("Room not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))

	op := InvalidOperation("", "nope")
	assert.Equal(t, ErrCodeInvalidOperation, op.Code)
	assert.Equal(t, ErrCodeAlreadyPaid, CodeOf(InvalidOperation(ErrCodeAlreadyPaid, "paid")))

	plain := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, ErrCodeInternal, CodeOf(plain))

	dep := DependencyFailure("gateway", plain)
	assert.ErrorIs(t, dep, plain)
	assert.Equal(t, "gateway: boom", dep.Error())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(KindValidation))
	assert.Equal(t, http.StatusBadRequest, StatusFor(KindInvalidOperation))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, StatusFor(KindForbidden))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindDependencyFailure))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindInternal))
}
