// Package authz decides whether verified claims satisfy a required role
// set. Membership is exact: no role outranks another.
package authz

import (
	"errors"
	"fmt"

	"userhub/backend/internal/models"
	"userhub/backend/internal/tokens"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
)

// Authorize reports nil when the claims' role is a member of required.
// Nil claims (no authenticated caller) is ErrUnauthenticated; a known role
// outside the set is ErrForbidden. A role string that does not parse is
// also ErrForbidden: unknown values fail closed instead of being treated
// as guest.
func Authorize(claims *tokens.Claims, required ...models.Role) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbidden, err)
	}

	for _, r := range required {
		if r == role {
			return nil
		}
	}
	return ErrForbidden
}
