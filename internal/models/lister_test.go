package models

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/accentcoach/internal/remote"
)

type fakeSource struct {
	names []string
	err   error
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) ListModels(ctx context.Context) ([]string, error) {
	return f.names, f.err
}

func TestCategorize(t *testing.T) {
	got := Categorize([]string{
		"models/gemini-2.5-flash",
		"models/gemini-2.5-flash-preview-tts",
		"gpt-4o-mini-tts",
		"whisper-1",
		"gpt-4o-transcribe",
		"gpt-4o-mini",
		"dall-e-3",
		"models/embedding-001",
	})

	want := Categories{
		Speech:        []string{"gemini-2.5-flash-preview-tts", "gpt-4o-mini-tts"},
		Transcription: []string{"gpt-4o-transcribe", "whisper-1"},
		Text:          []string{"gemini-2.5-flash", "gpt-4o-mini"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
}

func TestListAvailableModels(t *testing.T) {
	var out bytes.Buffer
	lister := &Lister{source: fakeSource{names: []string{"models/gemini-2.5-flash", "tts-1"}}, out: &out}

	if err := lister.ListAvailableModels(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Available fake models", "tts-1", "gemini-2.5-flash", "Transcription models:\n  None found"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestListAvailableModels_NoSource(t *testing.T) {
	lister := NewLister(nil)

	err := lister.ListAvailableModels(context.Background())
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got: %v", err)
	}
}

func TestListAvailableModels_SourceError(t *testing.T) {
	lister := &Lister{source: fakeSource{err: errors.New("401")}, out: &bytes.Buffer{}}
	if err := lister.ListAvailableModels(context.Background()); err == nil {
		t.Error("Expected error from source")
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	cfg := remote.DefaultConfig()
	cfg.OpenAIKey = apiKey
	source, err := remote.NewOpenAI(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := NewLister(source).ListAvailableModels(context.Background()); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
