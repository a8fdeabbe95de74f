// Package utils provides helpers for admin session tokens and
// password verification.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an admin session token fails
// signature or claim validation, including expiry.
var ErrInvalidToken = errors.New("invalid admin token")

// AdminToken represents a signed admin session token along with its
// expiry.  The token is carried in an HttpOnly cookie and validated
// on every admin call; it is the shared-password gate's session
// mechanism, not a per-user identity.
type AdminToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAdminToken builds and signs a short-lived HS256 JWT for the
// admin session.  The JWT includes a role claim checked by the admin
// middleware plus standard exp/iat claims.
func NewAdminToken(secret string, ttlMin int) (AdminToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AdminToken{}, err
	}
	return AdminToken{Token: signed, Exp: exp}, nil
}

// VerifyAdminToken parses and validates a token string.  It enforces
// the HS256 signing method and the admin role claim; expiry is
// validated by the JWT library.
func VerifyAdminToken(secret, raw string) error {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return ErrInvalidToken
	}
	return nil
}
