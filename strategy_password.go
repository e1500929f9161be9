package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MaxLoginAttempts is the maximum number of failed attempts a user gets
// before the cool down kicks in.
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// PasswordStrategy verifies an identifier/password credential pair against the
// credential store. Unknown identifier and wrong password are indistinguishable
// to the caller.
type PasswordStrategy struct {
	users  Users
	logger Logger
}

var _ AuthenticationStrategy = (*PasswordStrategy)(nil)

func NewPasswordStrategy(users Users) *PasswordStrategy {
	return &PasswordStrategy{
		users:  users,
		logger: defLogger{},
	}
}

func (p *PasswordStrategy) WithLogger(l Logger) *PasswordStrategy {
	if l != nil {
		p.logger = l
	}
	return p
}

func (p *PasswordStrategy) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	if creds.Password == "" {
		return nil, ErrIncorrectCredentials
	}

	user, err := p.users.GetByLoginIdentifier(ctx, creds.Identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIncorrectCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttempt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttempt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// if we have too many attempts in the given window, cool off!
	if user.LoginAttempts >= MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(creds.Password, user.PasswordHash); err != nil {
		if err2 := p.users.TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrIncorrectCredentials
	}

	// reset the login_attempts counter and login_attempt_at
	if err := p.users.TrackSuccessfulLogin(ctx, user); err != nil {
		p.logger.Error("failed to track successful login: %v", err)
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id    string
	email string
	phone string
	role  string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Phone() string {
	return a.phone
}

func (a authIdentity) Role() string {
	return a.role
}

var _ Identity = authIdentity{}

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:    user.ID.String(),
		email: user.Email,
		phone: user.Phone,
		role:  string(user.Role),
	}
}
