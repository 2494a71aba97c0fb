// Package auth provides credential verification and token handling for the NPS Explorer API.
//
// # Overview
//
// This package implements the login protocol, the signed credential token and the
// static service token check. It owns no storage: accounts are read through the
// AccountStore interface and passwords compared through PasswordHasher.
//
// # Key Components
//
// TokenCodec: HS256 JWTs bound to a shared secret
//
//	codec := auth.NewTokenCodec(secret, 24*time.Hour)
//	token, err := codec.Sign("a@b.com", auth.TokenPayload{UserID: 1, FirstName: "Ann"})
//	claims, err := codec.Verify(token) // errors wrap auth.ErrInvalidToken
//
// Tokens declaring any algorithm other than HS256 are rejected, including "none".
// A zero ttl issues tokens without an exp claim.
//
// Authenticator: login and bearer resolution
//
//	a := auth.NewAuthenticator(store, auth.NewBcryptHasher(12), codec)
//	token, err := a.Login(ctx, auth.LoginRequest{Email: &email, Password: &password})
//	authCtx, err := a.Authenticate(ctx, token)
//
// Login reports an unknown email and a wrong password with the same
// ErrInvalidCredentials so clients cannot enumerate accounts.
//
// StaticToken: shared service token
//
//	st := auth.NewStaticToken(apiToken)
//	ok := st.Verify(presented) // constant-time digest compare
//
// # Errors
//
//	ErrMissingField       - a required login field is absent (MissingFieldError names it)
//	ErrInvalidCredentials - unknown email or wrong password
//	ErrInvalidToken       - malformed, tampered, expired or wrong-algorithm token
//	ErrUnknownSubject     - valid token for an account that no longer exists
//	ErrUnauthorized       - matched by the three errors above
//
// # Related Packages
//
//   - pkg/middleware: Bearer and static token HTTP middleware
//   - pkg/users: PostgreSQL AccountStore
package auth
