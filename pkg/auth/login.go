package auth

import (
	"context"
	"errors"
	"fmt"
)

// LoginRequest is the body of a login attempt. Nil fields are absent.
type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Authenticator runs the login protocol and resolves bearer tokens to accounts
type Authenticator struct {
	accounts AccountStore
	hasher   PasswordHasher
	codec    *TokenCodec

	// dummyHash is compared against when the email is unknown so both
	// failure paths do the same amount of hashing work.
	dummyHash string
}

// NewAuthenticator creates an authenticator over the given collaborators
func NewAuthenticator(accounts AccountStore, hasher PasswordHasher, codec *TokenCodec) *Authenticator {
	a := &Authenticator{
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
	}
	if hash, err := hasher.Hash("npsexplorer-dummy-password"); err == nil {
		a.dummyHash = hash
	}
	return a
}

// Login verifies the credentials in req and returns a signed token.
//
// Errors:
//   - *MissingFieldError for the first absent field (email before password)
//   - ErrInvalidCredentials for an unknown email or a wrong password alike
//   - any other error is an internal failure of a collaborator
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == nil {
		return "", &MissingFieldError{Field: "email"}
	}
	if req.Password == nil {
		return "", &MissingFieldError{Field: "password"}
	}

	account, err := a.accounts.GetAccountByEmail(ctx, NormalizeEmail(*req.Email))
	if errors.Is(err, ErrAccountNotFound) {
		if a.dummyHash != "" {
			_, _ = a.hasher.Compare(a.dummyHash, *req.Password)
		}
		return "", fmt.Errorf("%w: no account for email", ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	match, err := a.hasher.Compare(account.PasswordHash, *req.Password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
	}

	return a.codec.Sign(account.Email, TokenPayload{
		UserID:    account.ID,
		FirstName: account.FirstName,
	})
}

// Authenticate verifies a bearer token and loads the account it names.
//
// Errors wrap ErrInvalidToken when verification fails and ErrUnknownSubject
// when the subject has no account. Store failures are returned as is.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*AuthContext, error) {
	claims, err := a.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := a.accounts.GetAccountByEmail(ctx, NormalizeEmail(claims.Subject))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, claims.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return &AuthContext{Account: account}, nil
}
