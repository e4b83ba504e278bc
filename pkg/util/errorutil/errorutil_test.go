package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	require.Nil(t, ToDomainError(nil))

	notFound := NewNotFound("grievance", map[string]any{"id": int64(7)})
	de := ToDomainError(fmt.Errorf("wrapped: %w", notFound))
	require.Equal(t, "NOT_FOUND", de.Code)
	require.Equal(t, http.StatusNotFound, de.HTTPStatus)
	require.Equal(t, "grievance not found", de.Message)
	require.Equal(t, int64(7), de.Details["id"])

	de = ToDomainError(pgx.ErrNoRows)
	require.Equal(t, http.StatusNotFound, de.HTTPStatus)

	de = ToDomainError(fiber.NewError(http.StatusBadRequest, "invalid payload"))
	require.Equal(t, "BAD_REQUEST", de.Code)
	require.Equal(t, "invalid payload", de.Message)

	raw := errors.New("boom")
	de = ToDomainError(raw)
	require.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	require.ErrorIs(t, de, raw)
	require.Equal(t, "internal server error: boom", de.Error())
}

func TestConstructors(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, ToDomainError(NewValidationError("bad", nil)).HTTPStatus)
	require.Equal(t, http.StatusUnauthorized, ToDomainError(NewUnauthorized("no")).HTTPStatus)
}
