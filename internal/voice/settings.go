package voice

import (
	"fmt"
	"strconv"
	"strings"
)

// Accent is the regional accent used for model audio
type Accent string

// Tone is the speaking style used for model audio
type Tone string

// Speed is the speaking rate in percent of normal speed
type Speed int

const (
	AccentUSA       Accent = "USA"
	AccentIndia     Accent = "India"
	AccentSingapore Accent = "Singapore"
	AccentAustralia Accent = "Australia"
	AccentHongKong  Accent = "HongKong"
)

const (
	ToneCheerful     Tone = "Cheerful"
	ToneFlat         Tone = "Flat"
	ToneBusinessLike Tone = "Business-like"
	ToneInquisitive  Tone = "Inquisitive"
	ToneSerious      Tone = "Serious"
)

// Accents lists all supported accents in display order
var Accents = []Accent{AccentUSA, AccentIndia, AccentSingapore, AccentAustralia, AccentHongKong}

// Tones lists all supported tones in display order
var Tones = []Tone{ToneCheerful, ToneFlat, ToneBusinessLike, ToneInquisitive, ToneSerious}

// Speeds lists all supported speeds in display order
var Speeds = []Speed{25, 50, 75, 100, 125, 150}

// Settings is the synthesis configuration. It is a plain value; changing it
// affects only the next playback request.
type Settings struct {
	Accent Accent `json:"accent"`
	Tone   Tone   `json:"tone"`
	Speed  Speed  `json:"speed"`
}

// DefaultSettings returns USA / Business-like / 50
func DefaultSettings() Settings {
	return Settings{
		Accent: AccentUSA,
		Tone:   ToneBusinessLike,
		Speed:  50,
	}
}

// Validate checks enum membership of every field
func (s Settings) Validate() error {
	if _, err := ParseAccent(string(s.Accent)); err != nil {
		return err
	}
	if _, err := ParseTone(string(s.Tone)); err != nil {
		return err
	}
	if !s.Speed.valid() {
		return fmt.Errorf("unsupported speed: %d", s.Speed)
	}
	return nil
}

// String renders the settings for logs and status lines
func (s Settings) String() string {
	return fmt.Sprintf("%s accent, %s tone, %d%% speed", s.Accent, s.Tone, s.Speed)
}

// Label returns a human readable accent name
func (a Accent) Label() string {
	if a == AccentHongKong {
		return "Hong Kong"
	}
	return string(a)
}

// ParseAccent matches an accent case-insensitively. "Hong Kong" is accepted
// for HongKong.
func ParseAccent(s string) (Accent, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for _, a := range Accents {
		if strings.EqualFold(norm, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unsupported accent: %q", s)
}

// ParseTone matches a tone case-insensitively
func ParseTone(s string) (Tone, error) {
	norm := strings.TrimSpace(s)
	for _, t := range Tones {
		if strings.EqualFold(norm, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported tone: %q", s)
}

// ParseSpeed parses a speed percentage, with or without a trailing %
func ParseSpeed(s string) (Speed, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid speed %q: %w", s, err)
	}
	sp := Speed(n)
	if !sp.valid() {
		return 0, fmt.Errorf("unsupported speed: %d", n)
	}
	return sp, nil
}

// Factor returns the speed as a multiplier of normal speed
func (s Speed) Factor() float64 {
	return float64(s) / 100
}

func (s Speed) valid() bool {
	for _, v := range Speeds {
		if s == v {
			return true
		}
	}
	return false
}

// Instruction is the speaking direction given to the voice model
func (s Settings) Instruction() string {
	return fmt.Sprintf("Speak with a %s English accent in a %s tone at %d%% of normal speaking speed.",
		s.Accent.Label(), strings.ToLower(string(s.Tone)), s.Speed)
}
