// Package daterange models the optional reporting window several stats
// endpoints accept as startDate/endDate.
package daterange

import (
	"net/url"
	"strings"
	"time"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

const Layout = "2006-01-02"

const (
	MsgBothRequired  = "Please select both start and end dates."
	MsgStartAfterEnd = "Start date must be on or before end date."
	MsgInvalidDate   = "Dates must use the YYYY-MM-DD format."
)

// Range is a closed window of calendar days. The zero value means "all
// time" and is sent as no parameters at all.
type Range struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

func New(start, end string) Range {
	return Range{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
}

func (r Range) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Validate requires both bounds, in Layout, with Start on or before End.
func (r Range) Validate() error {
	if r.Start == "" || r.End == "" {
		return apperr.Invalid("range", MsgBothRequired)
	}
	start, err := time.Parse(Layout, r.Start)
	if err != nil {
		return apperr.Invalid("start_date", MsgInvalidDate)
	}
	end, err := time.Parse(Layout, r.End)
	if err != nil {
		return apperr.Invalid("end_date", MsgInvalidDate)
	}
	if start.After(end) {
		return apperr.Invalid("range", MsgStartAfterEnd)
	}
	return nil
}

// Query returns the startDate/endDate parameters; empty bounds are left out
// by the remote client.
func (r Range) Query() url.Values {
	return url.Values{
		"startDate": {r.Start},
		"endDate":   {r.End},
	}
}

// Label is "start → end" for a bounded range and "Live totals" otherwise.
func (r Range) Label() string {
	if r.Start != "" && r.End != "" {
		return r.Start + " → " + r.End
	}
	return "Live totals"
}

// Today returns the current UTC date in Layout.
func Today() string {
	return time.Now().UTC().Format(Layout)
}
