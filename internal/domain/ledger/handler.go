package ledger

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(l *Ledger) *Handler {
	return &Handler{ledger: l}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/transactions", h.Transactions)
	g.GET("/revenue", h.Revenue)
}

func (h *Handler) Transactions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"rows": h.ledger.TransactionRows(),
	})
}

func (h *Handler) Revenue(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ledger.RevenuePresentation())
}
