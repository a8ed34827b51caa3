package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrNoSource is returned when no provider is configured
var ErrNoSource = errors.New("API key not found. Set GEMINI_API_KEY or OPENAI_API_KEY, or configure it in .accentcoach.yaml")

// Source lists model names. remote.Gemini and remote.OpenAI implement it.
type Source interface {
	Name() string
	ListModels(ctx context.Context) ([]string, error)
}

// Categories groups model names by what they can be used for
type Categories struct {
	Speech        []string
	Transcription []string
	Text          []string
}

// Categorize sorts model names into categories. Names that fit none are
// dropped.
func Categorize(names []string) Categories {
	var c Categories
	for _, name := range names {
		id := strings.TrimPrefix(name, "models/")
		lower := strings.ToLower(id)
		switch {
		case strings.Contains(lower, "tts"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(lower, "whisper"), strings.Contains(lower, "transcribe"):
			c.Transcription = append(c.Transcription, id)
		case strings.Contains(lower, "gemini"), strings.Contains(lower, "gpt"):
			c.Text = append(c.Text, id)
		}
	}

	sort.Strings(c.Speech)
	sort.Strings(c.Transcription)
	sort.Strings(c.Text)
	return c
}

// Lister handles listing available models
type Lister struct {
	source Source
	out    io.Writer
}

// NewLister creates a new model lister printing to stdout
func NewLister(source Source) *Lister {
	return &Lister{source: source, out: os.Stdout}
}

// ListAvailableModels lists all available models categorized by type
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.source == nil {
		return ErrNoSource
	}

	names, err := l.source.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	c := Categorize(names)

	fmt.Fprintf(l.out, "Available %s models:\n", l.source.Name())
	printSection(l.out, "Speech synthesis models (for listening)", c.Speech)
	printSection(l.out, "Transcription models", c.Transcription)

	fmt.Fprintln(l.out, "\nText and audio understanding models (for phonetics and scoring):")
	if len(c.Text) > 15 {
		// Show only the current generation
		shown := 0
		for _, m := range c.Text {
			if strings.Contains(m, "gemini-2") || strings.Contains(m, "gpt-4") {
				fmt.Fprintf(l.out, "  %s\n", m)
				shown++
			}
		}
		fmt.Fprintf(l.out, "  ... and %d more models\n", len(c.Text)-shown)
	} else {
		for _, m := range c.Text {
			fmt.Fprintf(l.out, "  %s\n", m)
		}
	}

	return nil
}

func printSection(w io.Writer, title string, models []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(models) == 0 {
		fmt.Fprintln(w, "  None found")
		return
	}
	for _, m := range models {
		fmt.Fprintf(w, "  %s\n", m)
	}
}
