package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"userhub/backend/internal/authz"
	"userhub/backend/internal/logging"
	"userhub/backend/internal/models"
	"userhub/backend/internal/tokens"
)

const claimsKey = "claims"

type TokenAuth struct {
	Codec *tokens.Codec
}

func NewTokenAuth(codec *tokens.Codec) *TokenAuth {
	return &TokenAuth{Codec: codec}
}

// RequireAuth gates a route on a valid access token. The bearer prefix is
// checked before any signature work; all verification failures surface the
// same generic 401.
func (m *TokenAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authorization header required")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
		}

		claims, err := m.Codec.VerifyAccess(parts[1])
		if err != nil {
			// The cause stays in the server log only.
			logging.FromContext(c.Request().Context()).Warn("token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

// RequireRole allows the request through only when the caller's role is in
// the given set. Must run after RequireAuth.
func (m *TokenAuth) RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authz.Authorize(ClaimsFrom(c), roles...)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, authz.ErrUnauthenticated):
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
		}
	}
}

// ClaimsFrom returns the verified claims attached by RequireAuth, or nil.
func ClaimsFrom(c echo.Context) *tokens.Claims {
	if claims, ok := c.Get(claimsKey).(*tokens.Claims); ok {
		return claims
	}
	return nil
}
