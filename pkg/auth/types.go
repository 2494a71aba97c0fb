package auth

import (
	"context"
	"strings"
	"time"
)

// Account is a registered user
type Account struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose hash
	Nickname     *string   `json:"nickname,omitempty"`
	HomeState    *string   `json:"home_state,omitempty"`
	DateCreated  time.Time `json:"date_created"`
}

// AccountStore looks up accounts by their normalized email.
// Implementations return ErrAccountNotFound when no account matches.
type AccountStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

// PasswordHasher hashes plaintext passwords and compares them to stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenPayload is the private part of a credential token
type TokenPayload struct {
	UserID    int64
	FirstName string
}

// AuthContext holds the identity attached to an authorized request.
// Bearer requests carry the resolved Account; static token requests set Service.
type AuthContext struct {
	Account *Account
	Service bool
}

// AccountID returns the id of the resolved account, or 0 for service access.
func (ac *AuthContext) AccountID() int64 {
	if ac == nil || ac.Account == nil {
		return 0
	}
	return ac.Account.ID
}

// NormalizeEmail returns the single comparison form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
