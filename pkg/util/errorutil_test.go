package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	orig := NewForbidden("account disabled")
	wrapped := fmt.Errorf("guard: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeForbidden, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestToDomainError_MapsNoRowsToNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("load employee: %w", pgx.ErrNoRows))
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_MapsUniqueViolationToConflict(t *testing.T) {
	de := ToDomainError(&pgconn.PgError{Code: "23505"})
	assert.Equal(t, CodeConflict, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
}

func TestToDomainError_UnknownIsInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestNewUpstreamUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewUpstreamUnavailable("wechat", cause)

	assert.True(t, HasCode(err, CodeUpstreamUnavailable))
	assert.False(t, HasCode(err, CodeUnauthorized))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, ToDomainError(err).HTTPStatus)
}
