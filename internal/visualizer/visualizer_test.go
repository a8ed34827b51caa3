package visualizer

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/testutil"
)

type frames struct {
	mu    sync.Mutex
	count int
	max   byte
}

func (f *frames) render(bins []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	for _, b := range bins {
		if b > f.max {
			f.max = b
		}
	}
}

func (f *frames) snapshot() (int, byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.max
}

func TestVisualizerLifecycle(t *testing.T) {
	src := audio.NewChannelSource(audio.Format{MIMEType: audio.MIMERawPCM, SampleRate: audio.CaptureSampleRate})
	rec := audio.NewRecorder(src)
	if err := rec.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer rec.Stop()

	v := New(5 * time.Millisecond)
	f := &frames{}
	if err := v.Start(rec, f.render); err != nil {
		t.Fatal(err)
	}
	if rec.TapCount() != 1 || !v.Running() {
		t.Fatal("visualizer should be tapped in and running")
	}

	go src.Push(sine(20, 0.05, 4*FFTSize))
	testutil.Eventually(t, time.Second, func() bool {
		_, max := f.snapshot()
		return max > 0
	}, "spectrum of pushed audio")

	v.Stop()
	if rec.TapCount() != 0 {
		t.Error("Stop should remove the tap")
	}
	if v.Running() {
		t.Error("Stop should end the loop")
	}

	after, _ := f.snapshot()
	time.Sleep(30 * time.Millisecond)
	if n, _ := f.snapshot(); n != after {
		t.Errorf("render called %d times after Stop", n-after)
	}
}

func TestVisualizerIdempotent(t *testing.T) {
	rec := audio.NewRecorder(audio.NewChannelSource(audio.Format{MIMEType: audio.MIMERawPCM, SampleRate: 16000}))
	v := New(0)

	v.Stop()

	f := &frames{}
	if err := v.Start(rec, f.render); err != nil {
		t.Fatal(err)
	}
	if err := v.Start(rec, f.render); err != nil {
		t.Fatal(err)
	}
	if rec.TapCount() != 1 {
		t.Errorf("TapCount() = %d, want 1 after starting twice", rec.TapCount())
	}

	v.Stop()
	v.Stop()
	if rec.TapCount() != 0 {
		t.Error("tap leaked")
	}

	// restartable
	if err := v.Start(rec, f.render); err != nil {
		t.Fatal(err)
	}
	v.Stop()
}

func TestVisualizerNoGoroutineLeak(t *testing.T) {
	rec := audio.NewRecorder(audio.NewChannelSource(audio.Format{MIMEType: audio.MIMERawPCM, SampleRate: 16000}))
	before := runtime.NumGoroutine()

	v := New(time.Millisecond)
	for i := 0; i < 20; i++ {
		v.Start(rec, func([]byte) {})
		v.Stop()
	}

	testutil.Eventually(t, time.Second, func() bool {
		return runtime.NumGoroutine() <= before
	}, "visualizer goroutines to exit")
}

func TestVisualizerNeedsRenderer(t *testing.T) {
	v := New(0)
	rec := audio.NewRecorder(nil)
	if err := v.Start(rec, nil); err != ErrNoRenderer {
		t.Errorf("Start() error = %v, want ErrNoRenderer", err)
	}
	if rec.TapCount() != 0 {
		t.Error("no tap should be registered")
	}
}
