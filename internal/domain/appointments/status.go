package appointments

import "github.com/allcures/dashboard/internal/platform/display"

const (
	StatusSuccessfullyDone = "Successfully Done"
	StatusPending          = "Pending"
	StatusScheduled        = "Scheduled"
)

// StatusTones colours the backend's free-text status labels. Anything not
// listed renders as secondary.
var StatusTones = display.NewToneMap(display.ToneSecondary, map[string]display.Tone{
	StatusSuccessfullyDone: display.ToneSuccess,
	StatusPending:          display.ToneWarning,
	StatusScheduled:        display.ToneWarning,
})
