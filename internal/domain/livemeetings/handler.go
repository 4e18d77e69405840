package livemeetings

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Resolver returns the live meetings view of the caller's session.
type Resolver func(c echo.Context) *View

type Handler struct {
	resolve Resolver
}

func NewHandler(resolve Resolver) *Handler {
	return &Handler{resolve: resolve}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.POST("/refresh", h.Refresh)
}

func (h *Handler) Get(c echo.Context) error {
	v := h.resolve(c)
	if v == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	v.Ensure(c.Request().Context())
	return c.JSON(http.StatusOK, v.Present())
}

func (h *Handler) Refresh(c echo.Context) error {
	v := h.resolve(c)
	if v == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	v.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, v.Present())
}
