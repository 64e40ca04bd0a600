package apierror

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorError(t *testing.T) {
	err := NewAPIError(ErrNotFound, "merchant not found", nil)
	assert.Equal(t, "NOT_FOUND: merchant not found", err.Error())
}

func TestAPIErrorUnwrap(t *testing.T) {
	err := NewAPIError(ErrInternalServer, "query failed", sql.ErrConnDone)
	assert.True(t, errors.Is(err, sql.ErrConnDone))

	noCause := NewAPIError(ErrBadRequest, "bad input", "field: merchant_id")
	assert.Nil(t, errors.Unwrap(noCause))
}

func TestIsCode(t *testing.T) {
	err := NewAPIError(ErrConflict, "duplicate reserve entry", nil)
	assert.True(t, IsCode(err, ErrConflict))
	assert.False(t, IsCode(err, ErrNotFound))
	assert.False(t, IsCode(errors.New("plain"), ErrConflict))

	wrapped := fmt.Errorf("stage failed: %w", err)
	assert.True(t, IsCode(wrapped, ErrConflict))
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		code   ErrorCode
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInternalServer, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, MapErrorToHTTPStatus(NewAPIError(c.code, "x", nil)))
	}
	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTPStatus(errors.New("plain")))
}
