package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque bearer token authorizing calls on behalf of the user.
//
// The empty Credential means logged out.
type Credential string

// String returns the raw token.
func (c Credential) String() string { return string(c) }

// Present reports whether the credential holds a token.
func (c Credential) Present() bool { return c != "" }

// Redacted returns a log-safe form of the token.
func (c Credential) Redacted() string {
	r := []rune(string(c))
	if len(r) <= 8 {
		return "****"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

// Claims is the informational subset of the claims the service puts in its tokens.
type Claims struct {
	Subject     string
	DisplayName string
	ExpiresAt   time.Time
}

// Expired reports whether the token's exp claim lies before now. A missing exp is never expired.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// Claims decodes the token's claims without verifying the signature.
//
// The result is for display only: the service is the sole judge of validity, and expiry is
// discovered through 401 responses rather than from these claims.
func (c Credential) Claims() (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(string(c), jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	claims := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if name, ok := mc["display_name"].(string); ok {
		claims.DisplayName = name
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
