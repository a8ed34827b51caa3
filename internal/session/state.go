package session

import (
	"strings"

	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// EventKind names a state machine event
type EventKind int

const (
	TextEdited EventKind = iota
	TranscribeStart
	TranscribeDone
	PhoneticsCleared
	SettingsChanged
	SynthesisStart
	SynthesisDone
	RecordStart
	RecordStop
	EvaluateStart
	EvaluateDone
)

var eventNames = map[EventKind]string{
	TextEdited:       "text_edited",
	TranscribeStart:  "transcribe_start",
	TranscribeDone:   "transcribe_done",
	PhoneticsCleared: "phonetics_cleared",
	SettingsChanged:  "settings_changed",
	SynthesisStart:   "synthesis_start",
	SynthesisDone:    "synthesis_done",
	RecordStart:      "record_start",
	RecordStop:       "record_stop",
	EvaluateStart:    "evaluate_start",
	EvaluateDone:     "evaluate_done",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one input to the state machine. Only the fields relevant to
// Kind are read.
type Event struct {
	Kind     EventKind
	Text     string
	Words    []phonetic.Word
	Result   *evaluation.Result
	Settings voice.Settings
}

// Phase is the coarse activity shown to the user
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseFetching   Phase = "fetching"
	PhaseGenerating Phase = "generating"
	PhaseRecording  Phase = "recording"
	PhaseEvaluating Phase = "evaluating"
)

// State is an immutable snapshot of a session
type State struct {
	Text       string             `json:"text"`
	Words      []phonetic.Word    `json:"words"`
	Evaluation *evaluation.Result `json:"evaluation,omitempty"`
	Settings   voice.Settings     `json:"settings"`
	Fetching   bool               `json:"fetching"`
	Generating bool               `json:"generating"`
	Recording  bool               `json:"recording"`
	Evaluating bool               `json:"evaluating"`
	Version    uint64             `json:"version"`
}

// HasPhonetics reports whether a transcription is available
func (s State) HasPhonetics() bool {
	return len(s.Words) > 0
}

// CanPlay reports whether a playback request would pass its guards
func (s State) CanPlay() bool {
	return s.HasPhonetics() && strings.TrimSpace(s.Text) != "" && !s.Generating
}

// CanRecord reports whether a recording could be started
func (s State) CanRecord() bool {
	return s.HasPhonetics() && !s.Fetching && !s.Evaluating && !s.Recording
}

// Phase returns the most significant in-flight activity
func (s State) Phase() Phase {
	switch {
	case s.Recording:
		return PhaseRecording
	case s.Evaluating:
		return PhaseEvaluating
	case s.Fetching:
		return PhaseFetching
	case s.Generating:
		return PhaseGenerating
	default:
		return PhaseIdle
	}
}

// Idle reports whether nothing is in flight
func (s State) Idle() bool {
	return s.Phase() == PhaseIdle
}

// transition is the whole state machine. Invalidation rules live here:
// starting a transcription drops the phonetics and the evaluation of the
// previous text, and starting a recording drops the previous evaluation.
func transition(s State, e Event) State {
	next := s
	next.Version = s.Version + 1

	switch e.Kind {
	case TextEdited:
		next.Text = e.Text

	case TranscribeStart:
		next.Text = e.Text
		next.Words = nil
		next.Evaluation = nil
		next.Fetching = true

	case TranscribeDone:
		next.Words = e.Words
		next.Fetching = false

	case PhoneticsCleared:
		next.Text = e.Text
		next.Words = nil
		next.Fetching = false

	case SettingsChanged:
		next.Settings = e.Settings

	case SynthesisStart:
		next.Generating = true

	case SynthesisDone:
		next.Generating = false

	case RecordStart:
		next.Evaluation = nil
		next.Recording = true

	case RecordStop:
		// recording hands straight over to evaluation
		next.Recording = false
		next.Evaluating = true

	case EvaluateStart:
		next.Evaluation = nil
		next.Evaluating = true

	case EvaluateDone:
		if e.Result != nil {
			next.Evaluation = e.Result
		}
		next.Evaluating = false

	default:
		return s
	}

	return next
}
