package service

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "pomodoro/timer/internal/errors"
)

// TokenService issues bearer tokens for the local control API. With an empty
// secret the API runs unauthenticated and Enabled reports false.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

func (s *TokenService) Issue(subject string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.BadRequest("auth_disabled", "no API secret configured")
	}

	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token")
	}
	return signed, nil
}

// Exchange trades the configured API secret for a token.
func (s *TokenService) Exchange(secret, subject string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.BadRequest("auth_disabled", "no API secret configured")
	}
	if subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		return "", apperrors.Unauthorized("invalid secret")
	}
	if subject == "" {
		subject = "api"
	}
	return s.Issue(subject)
}

// ParseToken returns the token subject.
func (s *TokenService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}

	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}

	return claims.Subject, nil
}
