package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccessTokens is the server-side allow-list of issued tokens. A signed token
// is only honored while its row here is unexpired; revocation and sliding
// expiration both happen through this repository.
type AccessTokens interface {
	repository.Repository[*AccessToken]

	UpsertToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*AccessToken, error)
	UpsertTokenTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string, expiresAt time.Time) (*AccessToken, error)

	LookupActive(ctx context.Context, token string) (*AccessToken, error)
	LookupActiveTx(ctx context.Context, tx bun.IDB, token string) (*AccessToken, error)

	Touch(ctx context.Context, token string, expiresAt time.Time) error
	TouchTx(ctx context.Context, tx bun.IDB, token string, expiresAt time.Time) error

	Revoke(ctx context.Context, token string) error
	RevokeTx(ctx context.Context, tx bun.IDB, token string) error
}

type accessTokens struct {
	repository.Repository[*AccessToken]
	db *bun.DB
}

var (
	_ AccessTokens                        = (*accessTokens)(nil)
	_ repository.Repository[*AccessToken] = (*accessTokens)(nil)
)

func NewAccessTokensRepository(db *bun.DB) AccessTokens {
	repo := repository.NewRepository[*AccessToken](db, repository.ModelHandlers[*AccessToken]{
		NewRecord: func() *AccessToken { return &AccessToken{} },
		GetID: func(t *AccessToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *AccessToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &accessTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *accessTokens) UpsertToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*AccessToken, error) {
	return a.UpsertTokenTx(ctx, a.db, userID, token, expiresAt)
}

// UpsertTokenTx records a freshly issued token. The unique user_id column makes
// this a replace: a principal's previous entry, expired or not, is overwritten
// so at most one token per principal is ever honored.
func (a *accessTokens) UpsertTokenTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string, expiresAt time.Time) (*AccessToken, error) {
	now := time.Now()
	record := &AccessToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	res, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, ErrTokenNotPersisted.Category, ErrTokenNotPersisted.Message).
			WithTextCode(ErrTokenNotPersisted.TextCode).
			WithCode(ErrTokenNotPersisted.Code)
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrTokenNotPersisted
	}

	return record, nil
}

func (a *accessTokens) LookupActive(ctx context.Context, token string) (*AccessToken, error) {
	return a.LookupActiveTx(ctx, a.db, token)
}

// LookupActiveTx finds the allow-list entry for a token, but only while it is
// inside its validity window. Expired rows are treated as absent; nothing
// proactively deletes them.
func (a *accessTokens) LookupActiveTx(ctx context.Context, tx bun.IDB, token string) (*AccessToken, error) {
	record := &AccessToken{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.expires_at >= ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *accessTokens) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	return a.TouchTx(ctx, a.db, token, expiresAt)
}

// TouchTx slides a token's expiry forward after a successful authentication.
// Only live rows slide: a touch still in flight when the token gets revoked or
// lapses must not bring the row back.
func (a *accessTokens) TouchTx(ctx context.Context, tx bun.IDB, token string, expiresAt time.Time) error {
	_, err := tx.NewUpdate().
		Model((*AccessToken)(nil)).
		Set("expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.expires_at >= ?", time.Now()).
		Exec(ctx)

	return err
}

func (a *accessTokens) Revoke(ctx context.Context, token string) error {
	return a.RevokeTx(ctx, a.db, token)
}

// RevokeTx expires a token immediately. The row stays behind for audit; a
// token with no matching row is already as revoked as it can get, so zero
// matched rows is not an error.
func (a *accessTokens) RevokeTx(ctx context.Context, tx bun.IDB, token string) error {
	now := time.Now()
	_, err := tx.NewUpdate().
		Model((*AccessToken)(nil)).
		Set("expires_at = ?", now).
		Set("updated_at = ?", now).
		Where("?TableAlias.token = ?", token).
		Exec(ctx)

	return err
}
