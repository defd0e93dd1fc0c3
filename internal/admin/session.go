package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookie = "admin_session"

// SessionMaker signs and verifies the admin console's session cookie.
type SessionMaker struct {
	secret []byte
	issuer string
}

func NewSessionMaker(secret string) *SessionMaker {
	return &SessionMaker{
		secret: []byte(secret),
		issuer: "yesgee-admin",
	}
}

func (m *SessionMaker) New(ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionMaker) Verify(tokenStr string) error {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return errors.New("invalid session")
	}
	if c.Issuer != m.issuer {
		return errors.New("invalid issuer")
	}
	return nil
}
