package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"
)

func pcmBytes(samples ...int16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func TestDecodePCM16(t *testing.T) {
	raw := pcmBytes(0, 16384, -32768, 32767)

	buf, err := DecodePCM16(raw)
	if err != nil {
		t.Fatalf("DecodePCM16() error = %v", err)
	}
	if buf.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", buf.SampleRate)
	}

	want := []float32{0, 0.5, -1, 32767.0 / 32768.0}
	if len(buf.Samples) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(buf.Samples))
	}
	for i := range want {
		if buf.Samples[i] != want[i] {
			t.Errorf("Sample %d = %v, want %v", i, buf.Samples[i], want[i])
		}
		if buf.Samples[i] < -1 || buf.Samples[i] >= 1 {
			t.Errorf("Sample %d = %v out of [-1,1)", i, buf.Samples[i])
		}
	}
}

func TestDecodePCM16Errors(t *testing.T) {
	if _, err := DecodePCM16(nil); err == nil {
		t.Error("Expected error for empty payload")
	}
	if _, err := DecodePCM16([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for odd length payload")
	}
	if _, err := DecodePCM16Rate([]byte{1, 2}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestDecodeBase64PCM(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pcmBytes(100, -100))
	buf, err := DecodeBase64PCM(payload)
	if err != nil {
		t.Fatalf("DecodeBase64PCM() error = %v", err)
	}
	if len(buf.Samples) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(buf.Samples))
	}

	if _, err := DecodeBase64PCM("not base64!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}

func TestBufferRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 12345, -32768, 32767}
	buf, err := DecodePCM16(pcmBytes(in...))
	if err != nil {
		t.Fatal(err)
	}

	out := buf.PCM16()
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Sample %d = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestBufferDuration(t *testing.T) {
	buf := Buffer{Samples: make([]float32, 36000), SampleRate: 24000}
	if got := buf.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", got)
	}
	if (Buffer{}).Duration() != 0 {
		t.Error("Empty buffer should have zero duration")
	}
}

func TestEncodeWAV(t *testing.T) {
	data, err := EncodeWAV([]int16{1, 2, 3}, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if len(data) != 44+6 {
		t.Errorf("Expected %d bytes, got %d", 50, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Error("Invalid WAV header markers")
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("Sample rate = %d, want 16000", rate)
	}

	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("Expected error for empty samples")
	}
	if _, err := EncodeWAV([]int16{1}, -1); err == nil {
		t.Error("Expected error for invalid sample rate")
	}
}
