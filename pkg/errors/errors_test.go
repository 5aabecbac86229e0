package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarrySentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"validation", Validation("email is required"), ErrValidation, http.StatusBadRequest},
		{"not found", NotFound("account", "a@b.com"), ErrNotFound, http.StatusNotFound},
		{"auth", Auth("wrong password"), ErrAuth, http.StatusUnauthorized},
		{"conflict", Conflict("account", "email", "a@b.com"), ErrConflict, http.StatusConflict},
		{"collaborator", Collaborator("find account", errors.New("boom")), ErrCollaborator, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestCollaboratorPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Collaborator("create price", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrCollaborator)
}

func TestHTTPStatusWrappedError(t *testing.T) {
	err := fmt.Errorf("load account: %w", NotFound("account", "x@y.com"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestHTTPStatusUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("mystery")))
}
