package overview

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Resolver returns the overview section of the caller's session.
type Resolver func(c echo.Context) *Section

type Handler struct {
	resolve Resolver
}

func NewHandler(resolve Resolver) *Handler {
	return &Handler{resolve: resolve}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.POST("/refresh", h.Refresh)
	g.POST("/range", h.ApplyRange)
	g.DELETE("/range", h.ClearRange)
}

type rangeRequest struct {
	StartDate string `json:"start_date" form:"start_date" query:"start_date"`
	EndDate   string `json:"end_date" form:"end_date" query:"end_date"`
}

func (h *Handler) Get(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	s.Ensure(c.Request().Context())
	return c.JSON(http.StatusOK, s.Present())
}

func (h *Handler) Refresh(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	s.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, s.Present())
}

// ApplyRange responds 200 with the validation message in the analytics
// state when the window is rejected; no backend request is made then.
func (h *Handler) ApplyRange(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	var req rangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.Summary.Ensure(c.Request().Context())
	s.Analytics.ApplyRange(c.Request().Context(), req.StartDate, req.EndDate)
	return c.JSON(http.StatusOK, s.Present())
}

func (h *Handler) ClearRange(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	s.Summary.Ensure(c.Request().Context())
	s.Analytics.ClearRange(c.Request().Context())
	return c.JSON(http.StatusOK, s.Present())
}
