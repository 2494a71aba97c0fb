package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod is the only algorithm tokens are signed and accepted with.
var SigningMethod = jwt.SigningMethodHS256

// Claims are the contents of a credential token. Subject holds the account email.
type Claims struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	jwt.RegisteredClaims
}

// Payload returns the private claims of the token
func (c *Claims) Payload() TokenPayload {
	return TokenPayload{UserID: c.UserID, FirstName: c.FirstName}
}

// TokenCodec signs and verifies credential tokens with a shared secret
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec. A ttl of zero issues tokens without an expiry.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign creates a signed token for subject carrying payload
func (c *TokenCodec) Sign(subject string, payload TokenPayload) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject is required")
	}

	now := c.now()
	claims := Claims{
		UserID:    payload.UserID,
		FirstName: payload.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(SigningMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry of a token and returns its claims.
// Every failure wraps ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// StaticToken holds the digest of the shared service token
type StaticToken struct {
	digest [32]byte
	set    bool
}

// NewStaticToken creates a verifier for the configured service token.
// An empty token never verifies.
func NewStaticToken(token string) *StaticToken {
	if token == "" {
		return &StaticToken{}
	}
	return &StaticToken{digest: sha256.Sum256([]byte(token)), set: true}
}

// Verify reports whether presented equals the configured token.
// Digests are compared so the comparison time does not depend on the input length.
func (s *StaticToken) Verify(presented string) bool {
	if !s.set || presented == "" {
		return false
	}
	digest := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(digest[:], s.digest[:]) == 1
}
