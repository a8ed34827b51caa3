package visualizer

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"sync"
)

const (
	// FFTSize is the transform length; it yields FFTSize/2 bins
	FFTSize = 256
	// Smoothing blends each frame with the previous one
	Smoothing = 0.8
	// MinDecibels maps to byte 0
	MinDecibels = -100.0
	// MaxDecibels maps to byte 255
	MaxDecibels = -30.0
)

// Analyzer keeps the most recent FFTSize samples of a PCM16 stream and
// computes smoothed frequency magnitudes from them
type Analyzer struct {
	mu       sync.Mutex
	samples  []float64 // ring of the last FFTSize samples
	pos      int
	window   []float64
	smoothed []float64
}

// NewAnalyzer creates an analyzer with a Blackman window
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		samples:  make([]float64, FFTSize),
		window:   blackman(FFTSize),
		smoothed: make([]float64, FFTSize/2),
	}
}

// Write appends mono PCM16 little-endian samples. A trailing odd byte is
// ignored.
func (a *Analyzer) Write(pcm []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i+1 < len(pcm); i += 2 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		a.samples[a.pos] = float64(v) / 32768.0
		a.pos = (a.pos + 1) % FFTSize
	}
}

// Reset forgets all samples and smoothing history
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.samples {
		a.samples[i] = 0
	}
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.pos = 0
}

// Bins returns one byte per frequency bin for the current frame
func (a *Analyzer) Bins() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	frame := make([]complex128, FFTSize)
	for i := 0; i < FFTSize; i++ {
		// oldest sample first
		s := a.samples[(a.pos+i)%FFTSize]
		frame[i] = complex(s*a.window[i], 0)
	}
	spectrum := fft(frame)

	out := make([]byte, FFTSize/2)
	for k := range out {
		mag := cmplx.Abs(spectrum[k]) / FFTSize
		a.smoothed[k] = Smoothing*a.smoothed[k] + (1-Smoothing)*mag
		out[k] = toByte(a.smoothed[k])
	}
	return out
}

// toByte maps a linear magnitude onto 0..255 over the decibel range
func toByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := 255 * (db - MinDecibels) / (MaxDecibels - MinDecibels)
	switch {
	case scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	}
	return byte(scaled)
}

func blackman(n int) []float64 {
	const alpha = 0.16
	a0 := (1 - alpha) / 2
	a1 := 0.5
	a2 := alpha / 2

	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

// fft computes the radix-2 Cooley-Tukey FFT. len(x) must be a power of 2.
func fft(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, x)
		return out
	}

	bits := 0
	for v := n; v > 1; v >>= 1 {
		bits++
	}
	result := make([]complex128, n)
	for i := 0; i < n; i++ {
		result[bitReverse(i, bits)] = x[i]
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		w := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			wn := complex(1, 0)
			for k := 0; k < half; k++ {
				u := result[start+k]
				t := wn * result[start+k+half]
				result[start+k] = u + t
				result[start+k+half] = u - t
				wn *= w
			}
		}
	}
	return result
}

func bitReverse(x, bits int) int {
	var r int
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// Bars averages bins down to n bars for a bar graph
func Bars(bins []byte, n int) []byte {
	if n <= 0 || len(bins) == 0 {
		return nil
	}
	if n >= len(bins) {
		return append([]byte(nil), bins...)
	}

	out := make([]byte, n)
	per := float64(len(bins)) / float64(n)
	for i := range out {
		from := int(float64(i) * per)
		to := int(float64(i+1) * per)
		if to <= from {
			to = from + 1
		}
		sum := 0
		for _, b := range bins[from:to] {
			sum += int(b)
		}
		out[i] = byte(sum / (to - from))
	}
	return out
}
