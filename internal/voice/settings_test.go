package voice

import (
	"strings"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Accent != AccentUSA || s.Tone != ToneBusinessLike || s.Speed != 50 {
		t.Errorf("DefaultSettings() = %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Default settings should validate: %v", err)
	}
}

func TestParseAccent(t *testing.T) {
	tests := []struct {
		in      string
		want    Accent
		wantErr bool
	}{
		{"USA", AccentUSA, false},
		{"india", AccentIndia, false},
		{"Hong Kong", AccentHongKong, false},
		{"HongKong", AccentHongKong, false},
		{" Australia ", AccentAustralia, false},
		{"Scotland", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAccent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAccent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAccent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTone(t *testing.T) {
	for _, tone := range Tones {
		got, err := ParseTone(strings.ToUpper(string(tone)))
		if err != nil || got != tone {
			t.Errorf("ParseTone(%q) = %q, %v", tone, got, err)
		}
	}
	if _, err := ParseTone("Angry"); err == nil {
		t.Error("Expected error for unsupported tone")
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in      string
		want    Speed
		wantErr bool
	}{
		{"25", 25, false},
		{"75%", 75, false},
		{"150", 150, false},
		{"60", 0, true},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSpeed(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSpeed(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSpeed(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []Settings{
		{Accent: "Mars", Tone: ToneFlat, Speed: 50},
		{Accent: AccentIndia, Tone: "Sad", Speed: 50},
		{Accent: AccentIndia, Tone: ToneFlat, Speed: 51},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) expected error", s)
		}
	}
}

func TestInstruction(t *testing.T) {
	s := Settings{Accent: AccentHongKong, Tone: ToneInquisitive, Speed: 125}
	got := s.Instruction()
	for _, want := range []string{"Hong Kong", "inquisitive", "125%"} {
		if !strings.Contains(got, want) {
			t.Errorf("Instruction() = %q, missing %q", got, want)
		}
	}
	if s.Speed.Factor() != 1.25 {
		t.Errorf("Factor() = %v, want 1.25", s.Speed.Factor())
	}
}
