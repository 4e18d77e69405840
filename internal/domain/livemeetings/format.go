package livemeetings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/allcures/dashboard/internal/platform/display"
)

// FormatDuration renders whole seconds as "Xm SSs" from one minute up and
// "Ns" below. nil renders the empty marker; negatives count as zero.
func FormatDuration(seconds *float64) string {
	if seconds == nil {
		return display.Empty
	}
	total := int64(math.Max(math.Floor(*seconds), 0))
	minutes, secs := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%dm %02ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// EventTone colours an event by the keyword its type contains.
func EventTone(eventType *string) display.Tone {
	if eventType == nil || *eventType == "" {
		return display.ToneSecondary
	}
	t := *eventType
	switch {
	case strings.Contains(t, "joined"):
		return display.ToneSuccess
	case strings.Contains(t, "left"):
		return display.ToneWarning
	case strings.Contains(t, "meeting"):
		return display.ToneSecondary
	}
	return display.ToneDefault
}

// SplitDateTime splits an ISO timestamp at "T". A value without a time part
// is returned whole as the date.
func SplitDateTime(value *string) (date, clock string) {
	if value == nil || *value == "" {
		return display.Empty, display.Empty
	}
	d, t, ok := strings.Cut(*value, "T")
	if !ok || t == "" {
		return *value, display.Empty
	}
	return d, t
}

func orEmpty(s *string) string {
	if s == nil {
		return display.Empty
	}
	return *s
}

func NewRow(ev Event) Row {
	date, clock := SplitDateTime(ev.EventTime)
	id := ""
	if ev.ID != nil {
		id = strconv.FormatInt(*ev.ID, 10)
	}
	event := "Unknown"
	if ev.EventType != nil {
		event = *ev.EventType
	}
	return Row{
		ID:          id,
		Event:       event,
		Tone:        EventTone(ev.EventType),
		Role:        orEmpty(ev.Role),
		Participant: orEmpty(ev.ParticipantID),
		Meeting:     orEmpty(ev.MeetingID),
		Date:        date,
		Time:        clock,
		Duration:    FormatDuration(ev.DurationSeconds),
		Info:        orEmpty(ev.EventCode),
		Raw:         ev.Raw,
	}
}
