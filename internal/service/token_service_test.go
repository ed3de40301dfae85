package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pomodoro/timer/internal/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	signed, err := tokens.Issue("cli")
	require.NoError(t, err)

	subject, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "cli", subject)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	signed, err := NewTokenService("secret", time.Hour).Issue("cli")
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).ParseToken(signed)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestTokenExpires(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)
	issued := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.Issue("cli")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.ParseToken(signed)
	assert.Error(t, err)
}

func TestTokenDisabledWithoutSecret(t *testing.T) {
	tokens := NewTokenService("", time.Hour)

	assert.False(t, tokens.Enabled())
	_, err := tokens.Issue("cli")
	assert.Error(t, err)
}

func TestExchangeChecksSecret(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	_, err := tokens.Exchange("wrong", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	signed, err := tokens.Exchange("secret", "")
	require.NoError(t, err)
	subject, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "api", subject)
}
