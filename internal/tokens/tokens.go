// Package tokens issues and verifies the service's bearer tokens: compact
// HS256 JWTs carrying sub/email/role/iat/exp. Access and refresh tokens are
// signed under disjoint secrets, so one kind can never verify as the other
// even if a type check is forgotten somewhere upstream.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"userhub/backend/internal/models"
)

// ErrInvalidToken is the single verification failure surfaced to callers.
// The underlying cause (expired, tampered, wrong secret, malformed) is kept
// in the wrapped message for server-side logs and must not reach clients.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Codec holds the immutable signing context. Zero shared mutable state;
// safe for concurrent use. Now is overridable for tests and defaults to
// time.Now.
type Codec struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (c *Codec) IssueAccess(userID uuid.UUID, email string, role models.Role) (string, error) {
	return c.issue(userID, email, role, c.AccessSecret, c.AccessTTL)
}

func (c *Codec) IssueRefresh(userID uuid.UUID, email string, role models.Role) (string, error) {
	return c.issue(userID, email, role, c.RefreshSecret, c.RefreshTTL)
}

func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return c.verify(token, c.AccessSecret)
}

func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	return c.verify(token, c.RefreshSecret)
}

func (c *Codec) issue(userID uuid.UUID, email string, role models.Role, secret []byte, ttl time.Duration) (string, error) {
	now := c.clock()
	claims := Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) verify(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithExpirationRequired(),
		// A token presented exactly at exp is still accepted; one second
		// past exp is not. Also absorbs minor clock skew between hosts.
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(c.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (c *Codec) clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
