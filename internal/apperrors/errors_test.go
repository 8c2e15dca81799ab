package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad file")))
	assert.True(t, IsOrdering(Ordering("dates overlap")))
	assert.True(t, IsState(State("wrong phase")))
	assert.True(t, IsPrecondition(Precondition("no series")))
	assert.True(t, IsCollaborator(Collaborator("forecast", errors.New("down"))))

	assert.False(t, IsValidation(State("wrong phase")))
	assert.False(t, IsState(errors.New("plain")))
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("upload rejected: %w", Validation("duplicate date"))
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestCollaboratorError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Collaborator("assistant", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "assistant service")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("v"), http.StatusBadRequest},
		{State("s"), http.StatusConflict},
		{Precondition("p"), http.StatusUnprocessableEntity},
		{Ordering("o"), http.StatusUnprocessableEntity},
		{Collaborator("c", errors.New("down")), http.StatusBadGateway},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}
