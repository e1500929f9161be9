package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gigline/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuther(t *testing.T) (*auth.Auther, auth.RepositoryManager) {
	t.Helper()
	repo := setupRepo(t)
	return auth.NewAuthenticator(repo, newTestConfig()), repo
}

func TestAutherLogin(t *testing.T) {
	auther, repo := newAuther(t)
	seeded := seedUser(t, repo, "ada@example.com", "+12025550142", "password-123", auth.RoleUser)
	ctx := context.Background()

	result, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)

	require.NotNil(t, result.User)
	assert.Equal(t, seeded.ID, result.User.ID)
	assert.Empty(t, result.User.PasswordHash)

	require.True(t, strings.HasPrefix(result.Token, "Bearer "), "token is returned with the scheme prefix")
	raw := strings.TrimPrefix(result.Token, "Bearer ")

	// the bare token is what the allow-list holds
	entry, err := repo.AccessTokens().LookupActive(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, entry.UserID)
}

func TestAutherLoginWrongPassword(t *testing.T) {
	auther, repo := newAuther(t)
	seedUser(t, repo, "ada@example.com", "", "password-123", auth.RoleUser)

	_, err := auther.Login(context.Background(), "ada@example.com", "wrong")
	assert.Equal(t, auth.ErrIncorrectCredentials, err)

	_, err = auther.Login(context.Background(), "nobody@example.com", "password-123")
	assert.Equal(t, auth.ErrIncorrectCredentials, err)
}

func TestAutherAuthenticate(t *testing.T) {
	auther, repo := newAuther(t)
	seeded := seedUser(t, repo, "ada@example.com", "", "password-123", auth.RoleAdmin)
	ctx := context.Background()

	result, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)

	identity, err := auther.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID.String(), identity.ID())
	assert.Equal(t, auth.RoleAdmin, identity.Role())
}

func TestAutherLogoutRevokes(t *testing.T) {
	auther, repo := newAuther(t)
	seedUser(t, repo, "ada@example.com", "", "password-123", auth.RoleUser)
	ctx := context.Background()

	result, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)

	_, err = auther.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, auther.Logout(ctx, result.Token))

	// the very same token is now rejected
	_, err = auther.Authenticate(ctx, result.Token)
	assert.Equal(t, auth.ErrUnauthorized, err)
}

func TestAutherSecondLoginInvalidatesFirst(t *testing.T) {
	auther, repo := newAuther(t)
	seedUser(t, repo, "ada@example.com", "", "password-123", auth.RoleUser)
	ctx := context.Background()

	first, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)

	// tokens embed a unique jti, so a re-login mints a different string
	second, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = auther.Authenticate(ctx, first.Token)
	assert.Equal(t, auth.ErrUnauthorized, err)

	_, err = auther.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAutherSessionFromToken(t *testing.T) {
	auther, repo := newAuther(t)
	seeded := seedUser(t, repo, "ada@example.com", "", "password-123", auth.RoleUser)
	ctx := context.Background()

	result, err := auther.Login(ctx, "ada@example.com", "password-123")
	require.NoError(t, err)

	raw := strings.TrimPrefix(result.Token, "Bearer ")
	session, err := auther.SessionFromToken(raw)
	require.NoError(t, err)

	assert.Equal(t, seeded.ID.String(), session.GetUserID())
	assert.Equal(t, auth.RoleUser, session.GetRole())
	require.NotNil(t, session.GetIssuedAt())
	assert.WithinDuration(t, time.Now(), *session.GetIssuedAt(), 5*time.Second)
	assert.Equal(t, "ada@example.com", session.GetData()["identifier"])
}

func TestAutherSessionFromTokenRejectsGarbage(t *testing.T) {
	auther, _ := newAuther(t)

	_, err := auther.SessionFromToken("not-a-token")
	assert.Error(t, err)
}

func TestAutherCustomTokenValidator(t *testing.T) {
	auther, _ := newAuther(t)

	called := false
	auther.WithTokenValidator(auth.TokenValidatorFunc(func(raw string) (auth.AuthClaims, error) {
		called = true
		return nil, auth.ErrTokenMalformed
	}))

	_, err := auther.SessionFromToken("whatever")
	assert.Error(t, err)
	assert.True(t, called)
}
