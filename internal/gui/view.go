package gui

import (
	"fmt"

	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/session"
)

const (
	phoneticPlaceholder = "Phonetic breakdown will appear here..."
	waitingForPractice  = "Waiting for your practice. Listen to the model, then record yourself."
)

// view is everything the window shows for one state snapshot
type view struct {
	AnalyzeLabel   string
	AnalyzeEnabled bool
	ListenLabel    string
	ListenEnabled  bool
	RecordLabel    string
	RecordEnabled  bool
	Phonetics      string
	Status         string
}

// render maps a state snapshot to labels and enabled flags. A running
// recording keeps its button enabled so the take can be stopped.
func render(s session.State) view {
	v := view{
		AnalyzeLabel:   "Analyze",
		AnalyzeEnabled: !s.Fetching,
		ListenLabel:    "Listen",
		ListenEnabled:  s.CanPlay(),
		RecordLabel:    "Record",
		RecordEnabled:  s.CanRecord() || s.Recording,
		Phonetics:      phoneticPlaceholder,
		Status:         "Ready",
	}

	if s.Fetching {
		v.AnalyzeLabel = "Analyzing…"
	}
	if s.Generating {
		v.ListenLabel = "Generating…"
	}
	switch {
	case s.Recording:
		v.RecordLabel = "Recording… (click to stop)"
	case s.Evaluating:
		v.RecordLabel = "Evaluating…"
	}

	if s.HasPhonetics() {
		v.Phonetics = phonetic.Format(s.Words)
	} else if s.Fetching {
		v.Phonetics = "Analyzing..."
	}

	switch s.Phase() {
	case session.PhaseFetching:
		v.Status = "Fetching phonetic breakdown..."
	case session.PhaseGenerating:
		v.Status = fmt.Sprintf("Generating audio (%s)...", s.Settings)
	case session.PhaseRecording:
		v.Status = "Recording, read the text aloud"
	case session.PhaseEvaluating:
		v.Status = "Evaluating your attempt..."
	default:
		if s.HasPhonetics() {
			v.Status = fmt.Sprintf("%d words analyzed", len(s.Words))
		}
	}
	return v
}
