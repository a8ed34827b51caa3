package visualizer

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FrameInterval is the redraw period, one animation frame at 60 Hz
const FrameInterval = time.Second / 60

// ErrNoRenderer is returned by Start without a render function
var ErrNoRenderer = errors.New("no renderer")

// Tap delivers live audio chunks until the returned remove func is called.
// audio.Recorder implements it.
type Tap interface {
	AddTap(fn func([]byte)) (remove func())
}

// Visualizer redraws a spectrum from a live tap
type Visualizer struct {
	analyzer *Analyzer
	interval time.Duration

	mu     sync.Mutex
	remove func()
	stop   chan struct{}
	done   chan struct{}
}

// New creates a visualizer. A zero interval means FrameInterval.
func New(interval time.Duration) *Visualizer {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Visualizer{
		analyzer: NewAnalyzer(),
		interval: interval,
	}
}

// Start taps src and calls render with the current bins every frame until
// Stop. render runs on the visualizer goroutine and must not call Stop.
// Starting a running visualizer does nothing.
func (v *Visualizer) Start(src Tap, render func(bins []byte)) error {
	if render == nil {
		return ErrNoRenderer
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stop != nil {
		return nil
	}

	v.analyzer.Reset()
	v.remove = src.AddTap(v.analyzer.Write)
	v.stop = make(chan struct{})
	v.done = make(chan struct{})

	go v.loop(render, v.stop, v.done)
	log.Debug().Dur("interval", v.interval).Msg("visualizer started")
	return nil
}

func (v *Visualizer) loop(render func([]byte), stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			render(v.analyzer.Bins())
		}
	}
}

// Stop removes the tap and ends the redraw loop. No render call happens
// after Stop returns. Stopping an idle visualizer does nothing.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stop == nil {
		return
	}

	v.remove()
	close(v.stop)
	<-v.done

	v.remove = nil
	v.stop = nil
	v.done = nil
	log.Debug().Msg("visualizer stopped")
}

// Running reports whether the redraw loop is active
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}
