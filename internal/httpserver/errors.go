package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"userhub/backend/internal/logging"
	"userhub/backend/internal/repo"
	"userhub/backend/internal/service"
	"userhub/backend/internal/tokens"
)

// writeError maps service errors onto the fixed HTTP taxonomy. Messages
// are generic on purpose; anything unexpected is logged in full and
// surfaced as a bare internal error.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return respond(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, tokens.ErrInvalidToken):
		return respond(c, http.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, service.ErrAccountSuspended):
		return respond(c, http.StatusForbidden, "account_suspended", "account suspended")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, repo.ErrNotFound):
		return respond(c, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		return respond(c, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		return respond(c, http.StatusConflict, "username_taken", "username already taken")
	case errors.Is(err, service.ErrValidation):
		return respond(c, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		logging.FromContext(c.Request().Context()).Error("internal error", "error", err)
		return respond(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func respond(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}
