// Package ledger serves the payments and revenue panels. Their data is a
// fixed sample set compiled into the binary.
package ledger

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"
)

//go:embed fixtures/*.json
var fixtures embed.FS

const (
	StatusPaid     = "Paid"
	StatusPending  = "Pending"
	StatusRefunded = "Refunded"
)

type Transaction struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Patient     string    `json:"patient"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Method      string    `json:"method"`
	ProcessedAt time.Time `json:"processedAt"`
}

// RevenueSnapshot is one month of revenue with its month-over-month change
// in percent.
type RevenueSnapshot struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Change  float64 `json:"change"`
}

type Revenue struct {
	ConversionRate float64           `json:"conversionRate"`
	History        []RevenueSnapshot `json:"history"`
}

// Ledger is immutable after Load and safe to share between sessions.
type Ledger struct {
	Transactions []Transaction
	Revenue      Revenue
}

func Load() (*Ledger, error) {
	var l Ledger
	if err := readFixture("fixtures/transactions.json", &l.Transactions); err != nil {
		return nil, err
	}
	if err := readFixture("fixtures/revenue.json", &l.Revenue); err != nil {
		return nil, err
	}
	return &l, nil
}

func readFixture(name string, out any) error {
	b, err := fixtures.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// CurrentRevenue is the latest month's revenue, or 0 without history.
func (l *Ledger) CurrentRevenue() float64 {
	if n := len(l.Revenue.History); n > 0 {
		return l.Revenue.History[n-1].Revenue
	}
	return 0
}

// BestMonth returns the month with the highest revenue; the earliest wins
// a tie.
func (l *Ledger) BestMonth() (RevenueSnapshot, bool) {
	if len(l.Revenue.History) == 0 {
		return RevenueSnapshot{}, false
	}
	best := l.Revenue.History[0]
	for _, s := range l.Revenue.History[1:] {
		if s.Revenue > best.Revenue {
			best = s
		}
	}
	return best, true
}
