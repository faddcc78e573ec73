package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrWordNotFound, http.StatusNotFound},
		{"empty input", fmt.Errorf("encoding: %w", ErrEmptyInput), http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"malformed", fmt.Errorf("decoding: %w", ErrMalformedContainer), http.StatusUnprocessableEntity},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"invariant", ErrInvariantViolation, http.StatusInternalServerError},
		{"app error", New(ErrInvalidInput, http.StatusTeapot, "odd"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrMalformedContainer, http.StatusUnprocessableEntity, "table length %d", 7)
	assert.ErrorIs(t, err, ErrMalformedContainer)
	assert.Equal(t, "malformed container: table length 7", err.Error())
}
