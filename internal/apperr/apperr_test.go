package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation(map[string]string{"name": "required"}), http.StatusBadRequest},
		{"invalid input", InvalidInput("bad"), http.StatusBadRequest},
		{"not found", NotFound("Tour", "x"), http.StatusNotFound},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"transition", InvalidTransition("booking", "CANCELLED", "CONFIRMED"), http.StatusConflict},
		{"capacity", CapacityExceeded("full"), http.StatusConflict},
		{"external", External("payment gateway", errors.New("timeout")), http.StatusBadGateway},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("Room", 1)), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InvalidTransition("payment", "FAILED", "COMPLETED"))

	assert.True(t, errors.Is(err, &Error{Kind: KindConflict}))
	assert.True(t, errors.Is(err, &Error{Kind: KindConflict, Code: "INVALID_STATE_TRANSITION"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindConflict, Code: "CONFLICT"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindNotFound}))
}

func TestAs_WrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection reset")
	e := As(cause)

	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.NotContains(t, e.Message, "connection reset")
	assert.Nil(t, As(nil))
}

func TestValidation_SingleFieldMessage(t *testing.T) {
	e := Validation(map[string]string{"email": "email is already registered"})
	assert.Equal(t, "email is already registered", e.Message)

	e = Validation(map[string]string{"a": "x", "b": "y"})
	assert.Equal(t, "Validation failed", e.Message)
	assert.Equal(t, "a: x; b: y", FieldList(e.Fields))
}
