package appointments

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/allcures/dashboard/internal/platform/daterange"
	"github.com/allcures/dashboard/pkg/pagination"
)

// Resolver returns the appointments section of the caller's session.
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
	g.GET("/count", h.Count)
}

// List shows the appointments table. Without query parameters it shows
// what is already loaded, fetching only on first access.
func (h *Handler) List(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	ctx := c.Request().Context()

	params := c.QueryParams()
	if len(params) == 0 {
		s.List.Ensure(ctx)
		return c.JSON(http.StatusOK, s.List.Present())
	}

	var nav Navigation
	if params.Has("date") {
		date := c.QueryParam("date")
		nav.Date = &date
	}
	if params.Has("page") {
		page := pagination.PageFromContext(c)
		nav.Page = &page
	}
	// Filters absent from the query stay as they are; an empty value clears them.
	current := s.List.Filter()
	nav.Status, nav.DocID = current.Status, current.DocID
	if params.Has("status") {
		status, err := optionalInt(c, "status")
		if err != nil {
			return err
		}
		nav.Status = status
	}
	if params.Has("docId") {
		docID, err := optionalInt(c, "docId")
		if err != nil {
			return err
		}
		nav.DocID = docID
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

// Count validates the requested range before asking the backend.
func (h *Handler) Count(c echo.Context) error {
	s := h.resolve(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	r := daterange.New(c.QueryParam("start_date"), c.QueryParam("end_date"))
	return c.JSON(http.StatusOK, s.Count.Count(c.Request().Context(), r))
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}
