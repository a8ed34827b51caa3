package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(&buf, "info", false)

	log.Debug().Msg("hidden")
	log.Info().Str("session", "abc").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "visible" || entry["session"] != "abc" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSetupExtraWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var primary, viewer bytes.Buffer
	Setup(&primary, "debug", true, &viewer)

	log.Debug().Msg("recording started")

	if !strings.Contains(primary.String(), "recording started") {
		t.Error("primary writer missed the line")
	}
	if !strings.Contains(viewer.String(), "recording started") {
		t.Error("extra writer missed the line")
	}
	if strings.Contains(viewer.String(), "{") {
		t.Error("extra writer should receive console format")
	}
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "info", false)

	l := WithCorrelationID("")
	l.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"correlation_id":"`) {
		t.Errorf("missing correlation id: %s", buf.String())
	}

	if NewCorrelationID() == NewCorrelationID() {
		t.Error("correlation ids should differ")
	}
}
