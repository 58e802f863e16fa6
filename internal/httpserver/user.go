package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"userhub/backend/internal/models"
	"userhub/backend/internal/repo"
	"userhub/backend/internal/service"
	"userhub/backend/internal/transport"
)

type UserHTTP struct {
	Users *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	opts := repo.ListOptions{
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "per_page", 20),
	}
	if v := c.QueryParam("role"); v != "" {
		role, err := models.ParseRole(v)
		if err != nil {
			return respond(c, http.StatusBadRequest, "validation_failed", err.Error())
		}
		opts.Role = role
	}
	if v := c.QueryParam("status"); v != "" {
		status, err := models.ParseStatus(v)
		if err != nil {
			return respond(c, http.StatusBadRequest, "validation_failed", err.Error())
		}
		opts.Status = status
	}

	users, total, err := h.Users.List(c.Request().Context(), opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, transport.UserListResponse{
		Users:   users,
		Total:   total,
		Page:    opts.Page,
		PerPage: opts.PerPage,
	})
}

func (h *UserHTTP) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid user id")
	}

	user, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid user id")
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}

	user, err := h.Users.Update(c.Request().Context(), id, service.UpdateUserInput{
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Activate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid user id")
	}

	user, err := h.Users.Activate(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Suspend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid user id")
	}

	var req transport.SuspendUserRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid body")
	}

	user, err := h.Users.Suspend(c.Request().Context(), id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "bad_request", "invalid user id")
	}

	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return respond(c, http.StatusBadRequest, "validation_failed", "query parameter q is required")
	}

	docs, err := h.Users.Search(c.Request().Context(), query, intQuery(c, "size", 20))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": docs})
}

func intQuery(c echo.Context, name string, fallback int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
