package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
)

// touchTimeout bounds the background expiry-slide write.
var touchTimeout = 5 * time.Second

// BearerStrategy verifies an Authorization header value: signature first, then
// the allow-list. A token whose row is missing or expired is rejected even
// when the signature checks out, which is what makes logout and revocation
// actually stick.
type BearerStrategy struct {
	tokens      TokenService
	accessList  AccessTokens
	users       Users
	scheme      string
	tokenWindow time.Duration
	logger      Logger
}

var _ AuthenticationStrategy = (*BearerStrategy)(nil)

func NewBearerStrategy(tokens TokenService, accessList AccessTokens, users Users, cfg Config) *BearerStrategy {
	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &BearerStrategy{
		tokens:      tokens,
		accessList:  accessList,
		users:       users,
		scheme:      scheme,
		tokenWindow: TokenWindow(cfg),
		logger:      defLogger{},
	}
}

func (b *BearerStrategy) WithLogger(l Logger) *BearerStrategy {
	if l != nil {
		b.logger = l
	}
	return b
}

func (b *BearerStrategy) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	raw, err := b.stripScheme(creds.Authorization)
	if err != nil {
		return nil, err
	}

	claims, err := b.tokens.Validate(raw)
	if err != nil {
		b.logger.Debug("bearer token signature rejected: %v", err)
		return nil, ErrUnauthorized
	}

	entry, err := b.accessList.LookupActive(ctx, raw)
	if err != nil {
		// fail closed: an unreachable store and a revoked token look the
		// same to the caller
		if !repository.IsRecordNotFound(err) {
			b.logger.Error("allow-list lookup failed: %v", err)
		}
		return nil, ErrUnauthorized
	}

	user, err := b.users.GetByID(ctx, claims.UserID())
	if err != nil {
		// a vanished principal is still just an invalid token to the caller
		if repository.IsRecordNotFound(err) {
			b.logger.Debug("token principal no longer exists: %s", claims.UserID())
		}
		return nil, ErrUnauthorized
	}

	b.touchAsync(entry.Token)

	return identityFromUser(user), nil
}

// RawToken strips the configured scheme prefix from an Authorization header
// value, rejecting empty or mis-schemed input.
func (b *BearerStrategy) RawToken(authorization string) (string, error) {
	return b.stripScheme(authorization)
}

func (b *BearerStrategy) stripScheme(authorization string) (string, error) {
	value := strings.TrimSpace(authorization)
	if value == "" {
		return "", ErrUnauthorized
	}

	prefix := b.scheme + " "
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return "", ErrUnauthorized
	}

	raw := strings.TrimSpace(value[len(prefix):])
	if raw == "" {
		return "", ErrUnauthorized
	}

	return raw, nil
}

// touchAsync slides the allow-list window forward without holding up the
// request. The goroutine carries its own deadline so a slow store cannot leak
// it, and a failed touch only costs freshness, never correctness.
func (b *BearerStrategy) touchAsync(token string) {
	expiresAt := time.Now().Add(b.tokenWindow)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("token touch panicked: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()

		if err := b.accessList.Touch(ctx, token, expiresAt); err != nil {
			b.logger.Warn("token touch failed: %v", err)
		}
	}()
}
