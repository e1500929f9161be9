package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the verified content of a bearer token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Identifier() string
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set we sign. It carries only what the
// authorization pipeline needs: principal id, role, and the login identifier
// used. There is deliberately no exp claim; token lifetime is governed by the
// allow-list so revocation and sliding expiration stay server-side.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
	LoginID  string `json:"identifier,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the principal id
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the principal's role as recorded at issue time. The bearer
// strategy still re-resolves the principal, so a role change after issuance
// wins over this claim.
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Identifier returns the login identifier the token was issued for
func (c *JWTClaims) Identifier() string {
	return c.LoginID
}

// IssuedAt returns the issue time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
