package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes give API clients a stable, language-independent handle on the
// failure; messages keep the wire wording the mobile clients already parse.
const (
	TextCodeNotAuthenticated  = "auth_no_session"
	TextCodeUnauthorized      = "auth_unauthorized"
	TextCodeNotEnoughPerms    = "auth_not_enough_permissions"
	TextCodeInvalidCreds      = "auth_invalid_credentials"
	TextCodeIdentityNotFound  = "auth_identity_not_found"
	TextCodeTokenNotPersisted = "auth_token_not_persisted"
	TextCodeTooManyAttempts   = "auth_too_many_attempts"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeEmptyPassword     = "auth_empty_password"
)

// ErrNotAuthenticated is returned when no session identity is present at all.
var ErrNotAuthenticated = errors.New("No authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized covers every bearer-token rejection: missing header, wrong
// scheme, bad signature, or an allow-list miss. Callers deliberately get no
// finer detail.
var ErrUnauthorized = errors.New("Unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrNotEnoughPermissions is returned when the identity resolved but its role
// is not in the required set.
var ErrNotEnoughPermissions = errors.New("Not enough permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeNotEnoughPerms).
	WithCode(errors.CodeForbidden)

// ErrIncorrectCredentials is the single answer for both unknown identifier
// and wrong password, so the login endpoint cannot be used to enumerate
// accounts.
var ErrIncorrectCredentials = errors.New("Incorrect username or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeNotFound)

// ErrIdentityNotFound is returned when a principal id from a verified token no
// longer resolves to a user record.
var ErrIdentityNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenNotPersisted is fatal to login: a token the allow-list did not
// acknowledge must never be handed to a client expecting revocability.
var ErrTokenNotPersisted = errors.New("Token is not created", errors.CategoryInternal).
	WithTextCode(TextCodeTokenNotPersisted).
	WithCode(errors.CodeInternal)

// ErrTooManyLoginAttempts enforces the login cool-down window.
var ErrTooManyLoginAttempts = errors.New("Too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrTokenExpired maps jwt-level expiry into the auth taxonomy.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch; the HTTP
// surface translates it to ErrIncorrectCredentials.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens, including errors coming
// straight from the jwt library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// HTTPStatus resolves the response status for any error surfaced by the auth
// core. Unknown errors report as internal without leaking detail.
func HTTPStatus(err error) int {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return errors.CodeInternal
	}

	if rich.Code != 0 {
		return rich.Code
	}

	switch rich.Category {
	case errors.CategoryAuth:
		return errors.CodeUnauthorized
	case errors.CategoryAuthz:
		return errors.CodeForbidden
	case errors.CategoryNotFound:
		return errors.CodeNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return errors.CodeBadRequest
	case errors.CategoryRateLimit:
		return 429
	default:
		return errors.CodeInternal
	}
}
