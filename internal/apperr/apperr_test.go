package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewConflict("Already requested"))
	require.Equal(t, Conflict, KindOf(err))
	require.True(t, errors.Is(err, ErrConflict))
	require.False(t, errors.Is(err, ErrNotFound))
	require.Equal(t, "Already requested", Message(err, "internal"))
	require.Equal(t, http.StatusConflict, HTTPStatus(KindOf(err)))
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset")
	require.Equal(t, Internal, KindOf(err))
	require.Equal(t, "Server error", Message(err, "Server error"))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(KindOf(err)))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bad hex")
	err := Wrap(BadRequest, "invalid id", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "invalid id: bad hex", err.Error())
}
