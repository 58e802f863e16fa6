package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"userhub/backend/internal/logging"
	mw "userhub/backend/internal/middleware"
	"userhub/backend/internal/service"
	"userhub/backend/internal/transport"
)

type AuthHTTP struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("bad request", "error", err)
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}

	user, err := h.Users.Create(ctx, service.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("bad request", "error", err)
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}

	res, err := h.Auth.Login(ctx, req.Email, req.Password, c.RealIP())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, transport.TokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}

	res, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, transport.TokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	claims := mw.ClaimsFrom(c)
	if claims == nil {
		return respond(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "invalid_token", "invalid token")
	}

	user, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	claims := mw.ClaimsFrom(c)
	if claims == nil {
		return respond(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "invalid_token", "invalid token")
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}
	if req.NewPassword == "" {
		return respond(c, http.StatusBadRequest, "validation_failed", "new password is required")
	}

	if err := h.Auth.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
