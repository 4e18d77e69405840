package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "allcures-dashboard"

// Codec signs session ids into HS256 tokens for the session cookie. The
// token subject is the session id.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodec(key []byte, ttl time.Duration) *Codec {
	return &Codec{key: key, ttl: ttl, now: time.Now}
}

func (c *Codec) Encode(sessionID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Decode verifies the token and returns the session id it carries.
func (c *Codec) Decode(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid session token: missing subject")
	}
	return claims.Subject, nil
}
