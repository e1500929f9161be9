package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/gigline/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testConfig is a plain Config for tests
type testConfig struct {
	signingKey string
	authScheme string
	contextKey string
	windowMins int
}

func (c testConfig) GetSigningKey() string      { return c.signingKey }
func (c testConfig) GetAuthScheme() string      { return c.authScheme }
func (c testConfig) GetContextKey() string      { return c.contextKey }
func (c testConfig) GetTokenWindowMinutes() int { return c.windowMins }

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		authScheme: "Bearer",
		contextKey: "user",
		windowMins: 30,
	}
}

// testIdentity is a simple implementation of the Identity interface
type testIdentity struct {
	id    string
	email string
	phone string
	role  string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Phone() string { return t.phone }
func (t testIdentity) Role() string  { return t.role }

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, identifier, password)
	if res := args.Get(0); res != nil {
		return res.(*auth.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, authorization string) (auth.Identity, error) {
	args := m.Called(ctx, authorization)
	if id := args.Get(0); id != nil {
		return id.(auth.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, authorization string) error {
	args := m.Called(ctx, authorization)
	return args.Error(0)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	if s := args.Get(0); s != nil {
		return s.(auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

// setupDB opens an in-memory sqlite store with the package schema applied.
func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, auth.RunMigrations(context.Background(), db))

	return db
}

func setupRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()
	return auth.NewRepositoryManager(setupDB(t))
}

// seedUser registers a user with a known password and returns the record.
func seedUser(t *testing.T, repo auth.RepositoryManager, email, phone, password string, role auth.UserRole) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &auth.User{
		Email:        email,
		Phone:        phone,
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		Instrument:   "guitar",
		PasswordHash: hash,
	})
	require.NoError(t, err)

	return user
}

func pastTime(d time.Duration) *time.Time {
	ts := time.Now().Add(-d)
	return &ts
}
