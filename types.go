package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated principal
type Identity interface {
	ID() string
	Email() string
	Phone() string
	Role() string
}

// Session holds attributes of a cookie-backed auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetRole() string
	GetIssuedAt() *time.Time
	GetData() map[string]any
}

// Credentials is the input to an authentication strategy. The password
// strategy reads Identifier/Password; the bearer strategy reads the raw
// Authorization header value.
type Credentials struct {
	Identifier    string
	Password      string
	Authorization string
}

// AuthenticationStrategy verifies one kind of credential and resolves it to a
// principal. Failures come back as taxonomy errors, never as raw store errors.
type AuthenticationStrategy interface {
	Verify(ctx context.Context, creds Credentials) (Identity, error)
}

// LoginResult is what a successful login hands back to the HTTP surface.
type LoginResult struct {
	User  *User
	Token string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, authorization string) (Identity, error)
	Logout(ctx context.Context, authorization string) error
	SessionFromToken(token string) (Session, error)
}

// TokenService mints and verifies the signed bearer tokens.
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetAuthScheme() string
	GetContextKey() string
	GetTokenWindowMinutes() int
}

// TokenWindow resolves the sliding-expiration duration from a Config.
func TokenWindow(cfg Config) time.Duration {
	mins := cfg.GetTokenWindowMinutes()
	if mins <= 0 {
		mins = 30
	}
	return time.Duration(mins) * time.Minute
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
