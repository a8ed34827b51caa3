package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrAlreadyRecording is returned by Start while a take is open
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNotRecording is returned by Stop without an open take
	ErrNotRecording = errors.New("not recording")
	// ErrEmptyRecording is returned by Stop when no audio was captured
	ErrEmptyRecording = errors.New("no audio captured")
)

// Format describes the bytes a Source produces
type Format struct {
	// MIMEType is MIMERawPCM for headerless mono PCM16, otherwise the
	// container type of the encoded stream
	MIMEType   string
	SampleRate int
}

// Source is a microphone. Open acquires the input device; closing the
// returned stream releases it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Format() Format
}

// Recording is one assembled take
type Recording struct {
	Data     []byte
	MIMEType string
	Duration time.Duration
}

// Recorder buffers a take from a Source between Start and Stop
type Recorder struct {
	source    Source
	chunkSize int

	mu      sync.Mutex
	stream  io.ReadCloser
	chunks  [][]byte
	done    chan struct{}
	started time.Time

	tapMu   sync.Mutex
	taps    map[int]func([]byte)
	nextTap int
}

// NewRecorder creates a recorder reading from source
func NewRecorder(source Source) *Recorder {
	return &Recorder{
		source:    source,
		chunkSize: 4096,
		taps:      make(map[int]func([]byte)),
	}
}

// Format returns the format of the underlying source
func (r *Recorder) Format() Format {
	return r.source.Format()
}

// IsRecording reports whether a take is open
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// Start acquires the input stream and begins appending chunks
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return ErrAlreadyRecording
	}

	stream, err := r.source.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	r.stream = stream
	r.chunks = nil
	r.done = make(chan struct{})
	r.started = time.Now()

	go r.readLoop(stream, r.done)
	return nil
}

// readLoop appends every data-available chunk until the stream ends
func (r *Recorder) readLoop(stream io.Reader, done chan struct{}) {
	defer close(done)

	buf := make([]byte, r.chunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()

			r.emit(chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Debug().Err(err).Msg("microphone stream ended")
			}
			return
		}
	}
}

// Stop releases the input stream and assembles the buffered chunks into a
// single recording. The stream is released on every path, including when
// nothing was captured.
func (r *Recorder) Stop() (Recording, error) {
	r.mu.Lock()
	stream, done, started := r.stream, r.done, r.started
	r.stream = nil
	r.mu.Unlock()

	if stream == nil {
		return Recording{}, ErrNotRecording
	}

	closeErr := stream.Close()
	<-done

	r.mu.Lock()
	chunks := r.chunks
	r.chunks = nil
	r.mu.Unlock()

	if closeErr != nil {
		log.Debug().Err(closeErr).Msg("closing microphone stream")
	}

	rec, err := assemble(chunks, r.source.Format())
	if err != nil {
		return Recording{}, err
	}
	if rec.Duration == 0 {
		rec.Duration = time.Since(started)
	}
	return rec, nil
}

// assemble concatenates chunks; raw PCM is wrapped into a WAV container
func assemble(chunks [][]byte, format Format) (Recording, error) {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	if size == 0 {
		return Recording{}, ErrEmptyRecording
	}

	data := make([]byte, 0, size)
	for _, c := range chunks {
		data = append(data, c...)
	}

	if format.MIMEType != MIMERawPCM {
		return Recording{Data: data, MIMEType: format.MIMEType}, nil
	}

	samples := bytesToInt16(data)
	if len(samples) == 0 {
		return Recording{}, ErrEmptyRecording
	}
	wav, err := EncodeWAV(samples, format.SampleRate)
	if err != nil {
		return Recording{}, err
	}
	return Recording{
		Data:     wav,
		MIMEType: MIMEWAV,
		Duration: time.Duration(len(samples)) * time.Second / time.Duration(format.SampleRate),
	}, nil
}

// AddTap registers fn to receive every captured chunk. The returned
// function removes the tap.
func (r *Recorder) AddTap(fn func([]byte)) (remove func()) {
	r.tapMu.Lock()
	id := r.nextTap
	r.nextTap++
	r.taps[id] = fn
	r.tapMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.tapMu.Lock()
			delete(r.taps, id)
			r.tapMu.Unlock()
		})
	}
}

// TapCount returns the number of registered taps
func (r *Recorder) TapCount() int {
	r.tapMu.Lock()
	defer r.tapMu.Unlock()
	return len(r.taps)
}

func (r *Recorder) emit(chunk []byte) {
	r.tapMu.Lock()
	fns := make([]func([]byte), 0, len(r.taps))
	for _, fn := range r.taps {
		fns = append(fns, fn)
	}
	r.tapMu.Unlock()

	for _, fn := range fns {
		fn(chunk)
	}
}
