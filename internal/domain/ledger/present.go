package ledger

import (
	"fmt"

	"github.com/allcures/dashboard/internal/platform/display"
)

const NoRevenueMessage = "Data will appear once revenue is recorded."

var StatusTones = display.NewToneMap(display.ToneDefault, map[string]display.Tone{
	StatusPaid:     display.ToneSuccess,
	StatusPending:  display.ToneWarning,
	StatusRefunded: display.ToneSecondary,
})

type TransactionRow struct {
	ID        string       `json:"id"`
	Reference string       `json:"reference"`
	Patient   string       `json:"patient"`
	Method    string       `json:"method"`
	Processed string       `json:"processed"`
	Amount    string       `json:"amount"`
	Status    string       `json:"status"`
	Tone      display.Tone `json:"tone"`
}

func (l *Ledger) TransactionRows() []TransactionRow {
	rows := make([]TransactionRow, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		amount := t.Amount
		rows = append(rows, TransactionRow{
			ID:        t.ID,
			Reference: t.Reference,
			Patient:   t.Patient,
			Method:    t.Method,
			Processed: t.ProcessedAt.Format("02 Jan"),
			Amount:    display.FormatINR(&amount),
			Status:    t.Status,
			Tone:      StatusTones.For(t.Status),
		})
	}
	return rows
}

type RevenueRow struct {
	Month   string       `json:"month"`
	Revenue string       `json:"revenue"`
	Change  string       `json:"change"`
	Tone    display.Tone `json:"tone"`
}

type RevenuePresentation struct {
	History        []RevenueRow `json:"history"`
	LatestChange   string       `json:"latest_change"`
	LatestTone     display.Tone `json:"latest_tone"`
	CurrentRevenue string       `json:"current_revenue"`
	BestMonth      string       `json:"best_month"`
	ConversionRate string       `json:"conversion_rate"`
}

// FormatChange renders a signed percentage, "+6.7%" or "-1.2%".
func FormatChange(change float64) string {
	if change >= 0 {
		return fmt.Sprintf("+%g%%", change)
	}
	return fmt.Sprintf("%g%%", change)
}

func (l *Ledger) RevenuePresentation() RevenuePresentation {
	p := RevenuePresentation{
		History:        make([]RevenueRow, 0, len(l.Revenue.History)),
		BestMonth:      NoRevenueMessage,
		ConversionRate: fmt.Sprintf("%.1f%%", l.Revenue.ConversionRate),
	}
	for _, s := range l.Revenue.History {
		revenue := s.Revenue
		p.History = append(p.History, RevenueRow{
			Month:   s.Month,
			Revenue: display.FormatINR(&revenue),
			Change:  FormatChange(s.Change),
			Tone:    display.SignTone(s.Change),
		})
	}

	var latest float64
	if n := len(l.Revenue.History); n > 0 {
		latest = l.Revenue.History[n-1].Change
	}
	p.LatestChange = FormatChange(latest) + " MoM"
	p.LatestTone = display.SignTone(latest)

	current := l.CurrentRevenue()
	p.CurrentRevenue = display.FormatINR(&current)
	if best, ok := l.BestMonth(); ok {
		revenue := best.Revenue
		p.BestMonth = display.FormatINR(&revenue)
	}
	return p
}
