package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microbus/pkg/model"
)

// Identity is the authenticated caller extracted from a session token.
type Identity struct {
	UserID string
	Phone  string
	Role   string
}

// NewSessionToken signs an HS256 JWT binding the user's identity to an
// expiry. Claims: sub (user ID), phone, role, exp, iat.
func NewSessionToken(secret string, user *model.User, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"phone": user.Phone,
		"role":  user.Role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}

// ParseSessionToken verifies the signature and expiry of a session token and
// returns the identity it carries.
func ParseSessionToken(secret, raw string) (*Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session token claims")
	}

	identity := &Identity{}
	if sub, ok := claims["sub"].(string); ok {
		identity.UserID = sub
	}
	if phone, ok := claims["phone"].(string); ok {
		identity.Phone = phone
	}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	if identity.Phone == "" {
		return nil, fmt.Errorf("session token missing phone claim")
	}
	return identity, nil
}
