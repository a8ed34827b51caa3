package audio

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPlaybackCommand(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("player discovery is tested on linux")
	}

	orig := lookPath
	defer func() { lookPath = orig }()

	lookPath = func(name string) (string, error) {
		if name == "aplay" {
			return "/usr/bin/aplay", nil
		}
		return "", exec.ErrNotFound
	}

	cmd, err := playbackCommand("/tmp/take.wav")
	if err != nil {
		t.Fatalf("playbackCommand() error = %v", err)
	}
	if filepath.Base(cmd.Args[0]) != "aplay" {
		t.Errorf("Expected aplay, got %v", cmd.Args)
	}
	if cmd.Args[len(cmd.Args)-1] != "/tmp/take.wav" {
		t.Errorf("Expected file as last argument, got %v", cmd.Args)
	}

	lookPath = func(name string) (string, error) {
		return "", exec.ErrNotFound
	}
	if _, err := playbackCommand("/tmp/take.wav"); err == nil {
		t.Error("Expected error when no player is installed")
	}
}

func TestCommandPlayerRejectsEmptyBuffer(t *testing.T) {
	p := NewCommandPlayer()
	if err := p.Play(Buffer{SampleRate: SynthesisSampleRate}); err == nil {
		t.Error("Expected error for empty buffer")
	}
	if p.Active() != 0 {
		t.Errorf("Active() = %d, want 0", p.Active())
	}
}
