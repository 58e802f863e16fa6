package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	mw "userhub/backend/internal/middleware"
	"userhub/backend/internal/models"
)

type Deps struct {
	Auth      *AuthHTTP
	Users     *UserHTTP
	TokenAuth *mw.TokenAuth
	LoginRate rate.Limit
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Credential endpoints get a per-IP limiter on top of no auth.
	auth := e.Group("/auth")
	if d.LoginRate > 0 {
		auth.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(d.LoginRate)))
	}
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)

	me := e.Group("/me", d.TokenAuth.RequireAuth)
	me.GET("", d.Auth.Me)
	me.POST("/password", d.Auth.ChangePassword)

	users := e.Group("/users", d.TokenAuth.RequireAuth,
		d.TokenAuth.RequireRole(models.RoleAdmin, models.RoleModerator))
	users.GET("", d.Users.List)
	users.GET("/search", d.Users.Search)
	users.GET("/:id", d.Users.Get)
	users.POST("/:id/activate", d.Users.Activate)

	admin := e.Group("/users", d.TokenAuth.RequireAuth,
		d.TokenAuth.RequireRole(models.RoleAdmin))
	admin.PATCH("/:id", d.Users.Update)
	admin.POST("/:id/suspend", d.Users.Suspend)
	admin.DELETE("/:id", d.Users.Delete)
}
