// Package livemeetings decodes and presents the live meeting event feed.
//
// The events endpoint returns each event as a 16-slot positional tuple.
// DecodeTuple is the only place that knows the slot layout:
//
//	0  id               number
//	4  role             string
//	5  durationSeconds  number
//	6  eventTime        string (ISO 8601)
//	11 meetingId        string
//	12 participantId    string
//	13 eventType        string
//	14 eventCode        string
//	15 eventEndTime     string
//
// Slots 1-3 and 7-10 are unused.
package livemeetings

import (
	"encoding/json"
)

const (
	slotID              = 0
	slotRole            = 4
	slotDurationSeconds = 5
	slotEventTime       = 6
	slotMeetingID       = 11
	slotParticipantID   = 12
	slotEventType       = 13
	slotEventCode       = 14
	slotEventEndTime    = 15

	TupleSize = 16
)

// Event is one decoded meeting event. Missing or mistyped slots are nil.
type Event struct {
	ID              *int64          `json:"id"`
	Role            *string         `json:"role"`
	DurationSeconds *float64        `json:"durationSeconds"`
	EventTime       *string         `json:"eventTime"`
	MeetingID       *string         `json:"meetingId"`
	ParticipantID   *string         `json:"participantId"`
	EventType       *string         `json:"eventType"`
	EventCode       *string         `json:"eventCode"`
	EventEndTime    *string         `json:"eventEndTime"`
	Raw             json.RawMessage `json:"raw"`
}

// DecodeTuple never fails. A payload that is not an array yields an event
// carrying only Raw.
func DecodeTuple(raw json.RawMessage) Event {
	ev := Event{Raw: append(json.RawMessage(nil), raw...)}

	var slots []json.RawMessage
	if err := json.Unmarshal(raw, &slots); err != nil {
		return ev
	}
	t := tuple(slots)

	ev.ID = t.integer(slotID)
	ev.Role = t.str(slotRole)
	ev.DurationSeconds = t.num(slotDurationSeconds)
	ev.EventTime = t.str(slotEventTime)
	ev.MeetingID = t.str(slotMeetingID)
	ev.ParticipantID = t.str(slotParticipantID)
	ev.EventType = t.str(slotEventType)
	ev.EventCode = t.str(slotEventCode)
	ev.EventEndTime = t.str(slotEventEndTime)
	return ev
}

type tuple []json.RawMessage

func (t tuple) at(i int) json.RawMessage {
	if i >= len(t) {
		return nil
	}
	return t[i]
}

func (t tuple) str(i int) *string {
	var s *string
	if err := json.Unmarshal(t.at(i), &s); err != nil {
		return nil
	}
	return s
}

func (t tuple) num(i int) *float64 {
	var n *float64
	if err := json.Unmarshal(t.at(i), &n); err != nil {
		return nil
	}
	return n
}

func (t tuple) integer(i int) *int64 {
	n := t.num(i)
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}
