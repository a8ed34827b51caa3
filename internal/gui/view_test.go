package gui

import (
	"strings"
	"testing"

	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/session"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

func TestRenderLabels(t *testing.T) {
	words := []phonetic.Word{{Word: "Hello", IPA: "həˈloʊ"}}

	tests := []struct {
		name    string
		state   session.State
		analyze string
		listen  string
		record  string
	}{
		{"idle", session.State{}, "Analyze", "Listen", "Record"},
		{"fetching", session.State{Fetching: true}, "Analyzing…", "Listen", "Record"},
		{"generating", session.State{Text: "Hello", Words: words, Generating: true}, "Analyze", "Generating…", "Record"},
		{"recording", session.State{Text: "Hello", Words: words, Recording: true}, "Analyze", "Listen", "Recording… (click to stop)"},
		{"evaluating", session.State{Text: "Hello", Words: words, Evaluating: true}, "Analyze", "Listen", "Evaluating…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := render(tt.state)
			if v.AnalyzeLabel != tt.analyze {
				t.Errorf("AnalyzeLabel = %q, want %q", v.AnalyzeLabel, tt.analyze)
			}
			if v.ListenLabel != tt.listen {
				t.Errorf("ListenLabel = %q, want %q", v.ListenLabel, tt.listen)
			}
			if v.RecordLabel != tt.record {
				t.Errorf("RecordLabel = %q, want %q", v.RecordLabel, tt.record)
			}
		})
	}
}

func TestRenderEnabled(t *testing.T) {
	words := []phonetic.Word{{Word: "Hello", IPA: "həˈloʊ"}}

	tests := []struct {
		name                    string
		state                   session.State
		analyze, listen, record bool
	}{
		{"no phonetics", session.State{Text: "Hello"}, true, false, false},
		{"ready", session.State{Text: "Hello", Words: words}, true, true, true},
		{"blank text", session.State{Text: "  ", Words: words}, true, false, true},
		{"fetching", session.State{Text: "Hello", Words: words, Fetching: true}, false, true, false},
		{"generating", session.State{Text: "Hello", Words: words, Generating: true}, true, false, true},
		{"recording stays stoppable", session.State{Text: "Hello", Words: words, Recording: true}, true, true, true},
		{"evaluating", session.State{Text: "Hello", Words: words, Evaluating: true}, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := render(tt.state)
			if v.AnalyzeEnabled != tt.analyze || v.ListenEnabled != tt.listen || v.RecordEnabled != tt.record {
				t.Errorf("enabled = analyze %v listen %v record %v, want %v %v %v",
					v.AnalyzeEnabled, v.ListenEnabled, v.RecordEnabled, tt.analyze, tt.listen, tt.record)
			}
		})
	}
}

func TestRenderPhonetics(t *testing.T) {
	if v := render(session.State{}); v.Phonetics != phoneticPlaceholder {
		t.Errorf("empty state Phonetics = %q", v.Phonetics)
	}

	words := []phonetic.Word{
		{Word: "Hello", IPA: "həˈloʊ"},
		{Word: "world", IPA: "wɜːrld"},
	}
	v := render(session.State{Text: "Hello world", Words: words})
	if v.Phonetics != phonetic.Format(words) {
		t.Errorf("Phonetics = %q, want %q", v.Phonetics, phonetic.Format(words))
	}
	if v.Status != "2 words analyzed" {
		t.Errorf("Status = %q", v.Status)
	}
}

func TestRenderGeneratingStatusNamesVoice(t *testing.T) {
	s := session.State{
		Text:       "Hello",
		Words:      []phonetic.Word{{Word: "Hello", IPA: "həˈloʊ"}},
		Generating: true,
		Settings:   voice.Settings{Accent: voice.AccentIndia, Tone: voice.ToneSerious, Speed: 75},
	}
	v := render(s)
	if !strings.Contains(v.Status, "India") || !strings.Contains(v.Status, "75%") {
		t.Errorf("Status = %q", v.Status)
	}
}

func TestSelectedSettings(t *testing.T) {
	s, err := selectedSettings("Hong Kong", "Cheerful", "125%")
	if err != nil {
		t.Fatalf("selectedSettings failed: %v", err)
	}
	want := voice.Settings{Accent: voice.AccentHongKong, Tone: voice.ToneCheerful, Speed: 125}
	if s != want {
		t.Errorf("selectedSettings = %+v, want %+v", s, want)
	}

	if _, err := selectedSettings("", "Cheerful", "50%"); err == nil {
		t.Error("Expected error for missing accent")
	}
	if _, err := selectedSettings("USA", "Cheerful", "60%"); err == nil {
		t.Error("Expected error for unsupported speed")
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	for _, label := range accentOptions() {
		if _, err := voice.ParseAccent(label); err != nil {
			t.Errorf("accent option %q does not parse: %v", label, err)
		}
	}
	for _, label := range toneOptions() {
		if _, err := voice.ParseTone(label); err != nil {
			t.Errorf("tone option %q does not parse: %v", label, err)
		}
	}
	for _, label := range speedOptions() {
		if _, err := voice.ParseSpeed(label); err != nil {
			t.Errorf("speed option %q does not parse: %v", label, err)
		}
	}
}
