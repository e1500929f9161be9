package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the cookie-session representation of a signed token. It is
// what handlers see when a browser client authenticates via the token cookie
// rather than the Authorization header.
type SessionObject struct {
	UserID   string         `json:"user_id,omitempty"`
	Role     string         `json:"role,omitempty"`
	IssuedAt *time.Time     `json:"issued_at,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetRole() string {
	return s.Role
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// HasRole checks if the session carries a specific role
func (s *SessionObject) HasRole(role string) bool {
	return s.Role == role
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s role=%s iat=%s", s.UserID, s.Role, issuedAt)
}

// sessionFromAuthClaims creates a SessionObject from verified claims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	data := map[string]any{
		"role":       claims.Role(),
		"identifier": claims.Identifier(),
	}

	issuedAt := claims.IssuedAt()

	return &SessionObject{
		UserID:   claims.UserID(),
		Role:     claims.Role(),
		IssuedAt: &issuedAt,
		Data:     data,
	}, nil
}
