package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// CaptureSampleRate is the rate microphone takes are recorded at
const CaptureSampleRate = 16000

// lookPath is replaced in tests
var lookPath = exec.LookPath

// CommandSource records from the default input device through an external
// capture tool writing raw PCM16 to stdout.
type CommandSource struct {
	// Command overrides tool discovery when set, e.g. ["arecord", "-q", ...]
	Command    []string
	SampleRate int
	// StartupGrace is how long Open waits for the tool to fail before
	// treating the device as acquired
	StartupGrace time.Duration
}

// NewCommandSource creates a source using the first capture tool found
func NewCommandSource() *CommandSource {
	return &CommandSource{
		SampleRate:   CaptureSampleRate,
		StartupGrace: 150 * time.Millisecond,
	}
}

// Format implements Source
func (s *CommandSource) Format() Format {
	return Format{MIMEType: MIMERawPCM, SampleRate: s.SampleRate}
}

// Open starts the capture tool. A tool that exits during the startup grace
// period means the device could not be acquired, e.g. permission denied.
func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	args := s.Command
	if len(args) == 0 {
		var err error
		if args, err = captureCommand(s.SampleRate); err != nil {
			return nil, err
		}
	}

	// A plain os.Pipe keeps the read end open after Wait, so the tail of
	// the take can still be drained once the tool is killed.
	stdout, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create capture pipe: %w", err)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		stdout.Close()
		w.Close()
		return nil, fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	w.Close()

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	select {
	case err := <-exited:
		msg := bytes.TrimSpace(stderr.Bytes())
		if err == nil {
			err = errors.New("exited immediately")
		}
		stdout.Close()
		return nil, fmt.Errorf("microphone unavailable (%s): %w: %s", args[0], err, msg)
	case <-ctx.Done():
		cmd.Process.Kill()
		<-exited
		stdout.Close()
		return nil, ctx.Err()
	case <-time.After(s.StartupGrace):
	}

	return &commandStream{stdout: stdout, cmd: cmd, exited: exited}, nil
}

// commandStream releases the device by killing the capture tool
type commandStream struct {
	stdout *os.File
	cmd    *exec.Cmd
	exited chan error
	once   sync.Once
}

func (c *commandStream) Read(p []byte) (int, error) {
	n, err := c.stdout.Read(p)
	if err != nil {
		c.stdout.Close()
	}
	return n, err
}

// Close kills the tool and waits for it to exit. The read end stays open
// until the reader drains it and hits EOF.
func (c *commandStream) Close() error {
	c.once.Do(func() {
		if c.cmd.Process != nil {
			c.cmd.Process.Kill()
		}
		<-c.exited
	})
	return nil
}

// captureCommand picks a capture tool for the platform
func captureCommand(rate int) ([]string, error) {
	r := strconv.Itoa(rate)

	candidates := [][]string{
		{"arecord", "-q", "-f", "S16_LE", "-r", r, "-c", "1", "-t", "raw"},
		{"rec", "-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-r", r, "-c", "1", "-"},
		{"ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default", "-ac", "1", "-ar", r, "-f", "s16le", "-"},
	}
	if runtime.GOOS == "darwin" {
		candidates = [][]string{
			{"rec", "-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-r", r, "-c", "1", "-"},
			{"ffmpeg", "-loglevel", "quiet", "-f", "avfoundation", "-i", ":0", "-ac", "1", "-ar", r, "-f", "s16le", "-"},
		}
	}

	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no audio recorder found. Install alsa-utils (arecord), sox (rec) or ffmpeg")
}

// ChannelSource is a microphone fed from outside the process, e.g. chunks
// streamed by a browser over a websocket.
type ChannelSource struct {
	format Format

	mu     sync.Mutex
	stream *pipeStream
}

// NewChannelSource creates a source for chunks of the given format
func NewChannelSource(format Format) *ChannelSource {
	return &ChannelSource{format: format}
}

// Format implements Source
func (s *ChannelSource) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// SetFormat changes the format for the next take
func (s *ChannelSource) SetFormat(format Format) {
	s.mu.Lock()
	s.format = format
	s.mu.Unlock()
}

// Open implements Source
func (s *ChannelSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil && !s.stream.isClosed() {
		return nil, ErrAlreadyRecording
	}
	pr, pw := io.Pipe()
	s.stream = &pipeStream{r: pr, w: pw}
	return s.stream, nil
}

// Push delivers one chunk to the open stream. Chunks arriving while no take
// is open are dropped.
func (s *ChannelSource) Push(chunk []byte) bool {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil || stream.isClosed() {
		return false
	}
	_, err := stream.w.Write(chunk)
	return err == nil
}

// Active reports whether a take is open
func (s *ChannelSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil && !s.stream.isClosed()
}

type pipeStream struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

func (p *pipeStream) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *pipeStream) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.w.Close()
	return p.r.Close()
}

func (p *pipeStream) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
