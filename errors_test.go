package auth_test

import (
	"fmt"
	"testing"

	"github.com/gigline/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomyMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     *errors.Error
		message string
		status  int
	}{
		{"no session", auth.ErrNotAuthenticated, "No authenticated", 401},
		{"unauthorized", auth.ErrUnauthorized, "Unauthorized", 401},
		{"not enough permissions", auth.ErrNotEnoughPermissions, "Not enough permissions", 403},
		{"incorrect credentials", auth.ErrIncorrectCredentials, "Incorrect username or password", 404},
		{"identity not found", auth.ErrIdentityNotFound, "User not found", 404},
		{"token not persisted", auth.ErrTokenNotPersisted, "Token is not created", 500},
		{"too many attempts", auth.ErrTooManyLoginAttempts, "Too many login attempts", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.status, auth.HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatusUnknownError(t *testing.T) {
	assert.Equal(t, 500, auth.HTTPStatus(fmt.Errorf("boom")))
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.True(t, auth.IsTokenExpiredError(jwt.ErrTokenExpired))
	assert.False(t, auth.IsTokenExpiredError(nil))
	assert.False(t, auth.IsTokenExpiredError(fmt.Errorf("some other error")))
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(jwt.ErrTokenMalformed))
	assert.False(t, auth.IsMalformedError(nil))
	assert.False(t, auth.IsMalformedError(fmt.Errorf("some other error")))
}
