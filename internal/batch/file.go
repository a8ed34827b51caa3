package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/accentcoach/internal/voice"
)

// Entry is one practice sentence with an optional voice override
type Entry struct {
	Text string
	Line int
	// Voice overrides the configured settings for this sentence when set
	Voice *Override
}

// Override holds the voice fields given on a line; zero fields keep the
// configured value
type Override struct {
	Accent voice.Accent
	Tone   voice.Tone
	Speed  voice.Speed
}

// Apply returns base with the overridden fields replaced
func (o *Override) Apply(base voice.Settings) voice.Settings {
	if o == nil {
		return base
	}
	if o.Accent != "" {
		base.Accent = o.Accent
	}
	if o.Tone != "" {
		base.Tone = o.Tone
	}
	if o.Speed != 0 {
		base.Speed = o.Speed
	}
	return base
}

// ReadBatchFile reads sentences from a file and returns Entry slice
// Supports formats:
// - Sentence only: "Turn it off" (uses the configured voice)
// - With voice: "Turn it off | India, Serious, 75" (any subset, any order)
// Blank lines and lines starting with # are skipped.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []Entry
	for i, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Text: line, Line: i + 1}
		if text, spec, ok := strings.Cut(line, "|"); ok {
			entry.Text = strings.TrimSpace(text)
			override, err := parseOverride(spec)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			entry.Voice = override
		}
		if entry.Text == "" {
			return nil, fmt.Errorf("line %d: sentence is empty", i+1)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseOverride accepts comma or space separated accent, tone and speed
// tokens in any order
func parseOverride(spec string) (*Override, error) {
	fields := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, nil
	}

	o := &Override{}
	for _, f := range fields {
		if a, err := voice.ParseAccent(f); err == nil {
			o.Accent = a
			continue
		}
		if t, err := voice.ParseTone(f); err == nil {
			o.Tone = t
			continue
		}
		if s, err := voice.ParseSpeed(f); err == nil {
			o.Speed = s
			continue
		}
		return nil, fmt.Errorf("unknown voice setting %q", f)
	}
	return o, nil
}

// splitLines splits a string by newlines
func splitLines(s string) []string {
	var lines []string
	current := ""
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
