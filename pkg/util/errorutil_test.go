package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		details map[string]string
		want    ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, nil, KindUnauthorized},
		{"not found", http.StatusNotFound, nil, KindNotFound},
		{"validation with field errors", http.StatusBadRequest, map[string]string{"name": "required"}, KindValidation},
		{"bad request without field errors", http.StatusBadRequest, nil, KindUnknown},
		{"forbidden", http.StatusForbidden, nil, KindUnknown},
		{"server error", http.StatusInternalServerError, nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "msg", tt.details)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.HTTPStatus)
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("unwraps wrapped api errors", func(t *testing.T) {
		wrapped := fmt.Errorf("gateway: %w", NewNotFound("Patient not found"))
		apiErr := ToAPIError(wrapped)
		assert.Equal(t, KindNotFound, apiErr.Kind)
		assert.Equal(t, "Patient not found", apiErr.Message)
	})

	t.Run("foreign errors become unknown", func(t *testing.T) {
		apiErr := ToAPIError(errors.New("boom"))
		assert.Equal(t, KindUnknown, apiErr.Kind)
		assert.Empty(t, apiErr.Message)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToAPIError(nil))
	})
}

func TestNetworkErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError(cause)

	assert.Equal(t, KindNetwork, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(fmt.Errorf("wrap: %w", NewUnauthorized("expired"))))
	assert.False(t, IsUnauthorized(NewNotFound("x")))
	assert.False(t, IsUnauthorized(nil))
}
