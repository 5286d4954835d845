package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "welcome-window"

// ErrInvalidToken is returned for cookies that fail signature or expiry checks.
var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	Session
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

func NewManager(secret string, lifetime time.Duration, secureCookies bool) *Manager {
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
		secure:   secureCookies,
		now:      time.Now,
	}
}

// Issue signs sess into a token valid for the configured lifetime.
func (m *Manager) Issue(sess Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Session: sess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the session it carries.
func (m *Manager) Parse(raw string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	return c.Session, nil
}
