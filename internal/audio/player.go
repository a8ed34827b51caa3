package audio

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Player plays a decoded buffer once, start to finish. Play returns as soon
// as playback has started.
type Player interface {
	Play(buf Buffer) error
}

// CommandPlayer plays buffers through the platform's command line players
type CommandPlayer struct {
	// OnFinish is called from the playback goroutine when a buffer finished
	// or failed to play
	OnFinish func(err error)

	mu     sync.Mutex
	active int
	wg     sync.WaitGroup
}

// NewCommandPlayer creates a player using the first available tool
func NewCommandPlayer() *CommandPlayer {
	return &CommandPlayer{}
}

// Play writes the buffer to a temporary WAV file and plays it in the
// background. Overlapping calls are handed to the platform as they come.
func (p *CommandPlayer) Play(buf Buffer) error {
	if len(buf.Samples) == 0 {
		return fmt.Errorf("nothing to play")
	}

	wav, err := buf.WAV()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "accentcoach-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create playback file: %w", err)
	}
	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write playback file: %w", err)
	}
	tmp.Close()

	cmd, err := playbackCommand(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := cmd.Start(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	p.mu.Lock()
	p.active++
	p.mu.Unlock()
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		err := cmd.Wait()
		os.Remove(tmp.Name())

		p.mu.Lock()
		p.active--
		p.mu.Unlock()

		if err != nil {
			log.Warn().Err(err).Str("player", cmd.Path).Msg("playback failed")
		}
		if p.OnFinish != nil {
			p.OnFinish(err)
		}
	}()

	log.Debug().Dur("duration", buf.Duration()).Str("player", cmd.Path).Msg("playback started")
	return nil
}

// Active returns the number of playbacks still running
func (p *CommandPlayer) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Wait blocks until every started playback has finished
func (p *CommandPlayer) Wait() {
	p.wg.Wait()
}

// playbackCommand builds the platform-specific command for a WAV file
func playbackCommand(file string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin": // macOS
		return exec.Command("afplay", file), nil
	case "linux":
		// Try multiple commands in order of preference
		if _, err := lookPath("paplay"); err == nil {
			return exec.Command("paplay", file), nil
		} else if _, err := lookPath("aplay"); err == nil {
			return exec.Command("aplay", "-q", file), nil
		} else if _, err := lookPath("ffplay"); err == nil {
			return exec.Command("ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", file), nil
		} else if _, err := lookPath("play"); err == nil {
			// SoX play command
			return exec.Command("play", "-q", file), nil
		}
		return nil, fmt.Errorf("no audio player found. Install pulseaudio-utils, alsa-utils, ffmpeg or sox")
	case "windows":
		return exec.Command("powershell", "-NoProfile", "-Command",
			fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", file)), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
