package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's platform role
type UserRole = string

const (
	// RoleUser is a regular platform member
	RoleUser UserRole = "USER"
	// RoleAdmin is an administrator
	RoleAdmin UserRole = "ADMIN"
)

// User is the principal record backing authentication. Email and phone are
// login identifiers; email is stored lowercase so lookups stay
// case-insensitive, phone is stored in E.164 form.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"userId,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number,nullzero" json:"phoneNumber,omitempty"`
	FirstName     string     `bun:"first_name" json:"firstName,omitempty"`
	LastName      string     `bun:"last_name" json:"lastName,omitempty"`
	Instrument    string     `bun:"instrument" json:"instrument,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	LoginAttempts int        `bun:"login_attempts" json:"-"`
	LoginAttempt  *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Sanitized returns a copy safe to hand to clients: no hash, no throttling
// bookkeeping. The json tags already hide those fields but callers that log
// or re-serialize records should not have to rely on that.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.LoginAttempts = 0
	c.LoginAttempt = nil
	return &c
}

// AccessToken is an allow-list entry: the server-side record that a signed
// bearer token is currently valid. The unique user_id column enforces the
// single-active-token-per-principal policy; issuing a new token upserts over
// the previous entry.
type AccessToken struct {
	bun.BaseModel `bun:"table:access_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,unique,type:uuid" json:"userId,omitempty"`
	Token         string     `bun:"token,notnull" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expiresAt,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// Active reports whether the entry is still inside its validity window.
func (t *AccessToken) Active(now time.Time) bool {
	if t == nil {
		return false
	}
	return !t.ExpiresAt.Before(now)
}
