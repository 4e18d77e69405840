package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// DoctorsPageSize is the page size the doctors endpoint uses when turning a
// page number into a record offset.
const DoctorsPageSize = 10

// Pager tracks the 1-based page a section shows out of the pages reported
// by the backend.
type Pager struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// NewPager clamps totalPages to at least 1 and page to [1, totalPages].
func NewPager(page, totalPages int) Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pager{Page: page, TotalPages: totalPages}
}

// HasPrevious is false on the first page.
func (p Pager) HasPrevious() bool {
	return p.Page > 1
}

// HasNext is false on the last page.
func (p Pager) HasNext() bool {
	return p.Page < p.TotalPages
}

// Label renders "Page X of Y".
func (p Pager) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages)
}

// Controls is the serialisable form of a pager for the presentation layer.
type Controls struct {
	Page            int    `json:"page"`
	TotalPages      int    `json:"total_pages"`
	Label           string `json:"label"`
	PreviousEnabled bool   `json:"previous_enabled"`
	NextEnabled     bool   `json:"next_enabled"`
}

func (p Pager) Controls() Controls {
	return Controls{
		Page:            p.Page,
		TotalPages:      p.TotalPages,
		Label:           p.Label(),
		PreviousEnabled: p.HasPrevious(),
		NextEnabled:     p.HasNext(),
	}
}

// PageIndex converts a 1-based page into the zero-based index the
// appointments endpoint takes as its offset.
func PageIndex(page int) int {
	if page < 1 {
		return 0
	}
	return page - 1
}

// Offset converts a 1-based page into a record offset for the given page size.
func Offset(page, pageSize int) int {
	return PageIndex(page) * pageSize
}

// PageFromContext reads the 1-based "page" query parameter. Missing or
// invalid values yield 1.
func PageFromContext(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
