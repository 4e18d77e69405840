// Package display holds the formatting shared by every section's
// presentation: badge tones, percentages with a placeholder for undefined
// ratios, and en-IN number and currency rendering.
package display

// Tone is the visual emphasis of a badge.
type Tone string

const (
	ToneDefault     Tone = "default"
	ToneSuccess     Tone = "success"
	ToneWarning     Tone = "warning"
	ToneSecondary   Tone = "secondary"
	ToneDestructive Tone = "destructive"
)

// ToneMap maps free-text labels from the backend onto tones. Labels that are
// not listed get the fallback tone.
type ToneMap struct {
	tones    map[string]Tone
	fallback Tone
}

func NewToneMap(fallback Tone, tones map[string]Tone) ToneMap {
	m := make(map[string]Tone, len(tones))
	for label, tone := range tones {
		m[label] = tone
	}
	return ToneMap{tones: m, fallback: fallback}
}

func (m ToneMap) For(label string) Tone {
	if tone, ok := m.tones[label]; ok {
		return tone
	}
	return m.fallback
}

// Fallback returns the tone used for unrecognised labels.
func (m ToneMap) Fallback() Tone {
	return m.fallback
}

// SignTone is success for non-negative changes and warning otherwise.
func SignTone(change float64) Tone {
	if change >= 0 {
		return ToneSuccess
	}
	return ToneWarning
}
