package doctors

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/allcures/dashboard/pkg/pagination"
)

// Resolver returns the doctors section of the caller's session.
type Resolver func(c echo.Context) *Section

type Handler struct {
	resolve Resolver
}

func NewHandler(resolve Resolver) *Handler {
	return &Handler{resolve: resolve}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("/refresh", h.Refresh)
	g.GET("/medicine-types", h.MedicineTypes)
	g.GET("/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	ctx := c.Request().Context()

	params := c.QueryParams()
	if !params.Has("page") && !params.Has("medType") {
		s.List.Ensure(ctx)
		return c.JSON(http.StatusOK, s.List.Present())
	}

	var nav Navigation
	if params.Has("page") {
		page := pagination.PageFromContext(c)
		nav.Page = &page
	}
	if params.Has("medType") {
		id, err := ParseMedicineType(c.QueryParam("medType"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		nav.MedTypeID = &id
	}
	s.List.Navigate(ctx, nav)
	return c.JSON(http.StatusOK, s.List.Present())
}

func (h *Handler) Refresh(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	s.List.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, s.List.Present())
}

// Get returns the profile of a doctor on the currently loaded page.
func (h *Handler) Get(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	d, ok := s.List.Doctor(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found on the current page")
	}
	return c.JSON(http.StatusOK, NewDetail(d))
}

func (h *Handler) MedicineTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, MedicineTypes)
}
