package audio

import (
	"encoding/base64"
	"fmt"
	"time"
)

// SynthesisSampleRate is the fixed rate of remote synthesized speech
const SynthesisSampleRate = 24000

// Buffer is mono audio as normalized floating point samples
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// DecodePCM16 decodes mono 16-bit little-endian PCM at the synthesis rate.
// Each sample is divided by 32768, mapping it into [-1, 1).
func DecodePCM16(raw []byte) (Buffer, error) {
	return DecodePCM16Rate(raw, SynthesisSampleRate)
}

// DecodePCM16Rate is DecodePCM16 for an explicit sample rate
func DecodePCM16Rate(raw []byte, sampleRate int) (Buffer, error) {
	if len(raw) == 0 {
		return Buffer{}, fmt.Errorf("no audio data")
	}
	if len(raw)%2 != 0 {
		return Buffer{}, fmt.Errorf("PCM16 payload has odd length %d", len(raw))
	}
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float32(v) / 32768
	}
	return Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// DecodeBase64PCM decodes a base64 transported PCM16 payload
func DecodeBase64PCM(payload string) (Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to decode audio payload: %w", err)
	}
	return DecodePCM16(raw)
}

// Duration returns the playing time of the buffer
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// PCM16 converts the buffer back to 16-bit samples
func (b Buffer) PCM16() []int16 {
	out := make([]int16, len(b.Samples))
	for i, s := range b.Samples {
		v := s * 32768
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// WAV encodes the buffer as a 16-bit mono WAV file
func (b Buffer) WAV() ([]byte, error) {
	return EncodeWAV(b.PCM16(), b.SampleRate)
}

// bytesToInt16 reinterprets little-endian PCM16 bytes; a trailing odd byte
// is dropped.
func bytesToInt16(raw []byte) []int16 {
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}
	return out
}
