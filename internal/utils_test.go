package internal

import "testing"

func TestFingerprint(t *testing.T) {
	a := Fingerprint("gemini", "Hello world")
	b := Fingerprint("gemini", "  Hello world ")
	if a != b {
		t.Errorf("Fingerprint should ignore surrounding whitespace: %s != %s", a, b)
	}

	if Fingerprint("a b", "c") == Fingerprint("a", "b c") {
		t.Error("Fingerprint should separate parts")
	}

	if len(a) != 32 {
		t.Errorf("Expected 32 hex chars, got %d", len(a))
	}
}
