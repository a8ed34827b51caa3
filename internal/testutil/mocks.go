package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// SynthesizeCall records the arguments of one Synthesize call
type SynthesizeCall struct {
	Text     string
	Settings voice.Settings
}

// MockClient mocks the remote analysis client. Hooks, when set, run before
// the canned response is returned and may block to simulate latency.
type MockClient struct {
	mu sync.Mutex

	Words         []phonetic.Word
	TranscribeErr error
	Audio         []byte
	SynthesizeErr error
	Result        evaluation.Result
	EvaluateErr   error

	TranscribeHook func(text string)
	EvaluateHook   func(text string)

	TranscribeCalls []string
	SynthesizeCalls []SynthesizeCall
	EvaluateCalls   []audio.Recording
}

// Name implements remote.Client
func (m *MockClient) Name() string {
	return "mock"
}

// Transcribe implements remote.Client
func (m *MockClient) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	m.mu.Lock()
	m.TranscribeCalls = append(m.TranscribeCalls, text)
	hook := m.TranscribeHook
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TranscribeErr != nil {
		return nil, m.TranscribeErr
	}
	out := make([]phonetic.Word, len(m.Words))
	copy(out, m.Words)
	return out, nil
}

// Synthesize implements remote.Client
func (m *MockClient) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SynthesizeCalls = append(m.SynthesizeCalls, SynthesizeCall{Text: text, Settings: settings})
	if m.SynthesizeErr != nil {
		return nil, m.SynthesizeErr
	}
	return m.Audio, nil
}

// Evaluate implements remote.Client
func (m *MockClient) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	m.mu.Lock()
	m.EvaluateCalls = append(m.EvaluateCalls, take)
	hook := m.EvaluateHook
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EvaluateErr != nil {
		return evaluation.Result{}, m.EvaluateErr
	}
	return m.Result, nil
}

// Counts returns the number of calls per operation
func (m *MockClient) Counts() (transcribe, synthesize, evaluate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TranscribeCalls), len(m.SynthesizeCalls), len(m.EvaluateCalls)
}

// LastSynthesize returns the most recent Synthesize arguments
func (m *MockClient) LastSynthesize() (SynthesizeCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SynthesizeCalls) == 0 {
		return SynthesizeCall{}, false
	}
	return m.SynthesizeCalls[len(m.SynthesizeCalls)-1], true
}

// MockPlayer records played buffers
type MockPlayer struct {
	mu     sync.Mutex
	Err    error
	Played []audio.Buffer
}

// Play implements audio.Player
func (p *MockPlayer) Play(buf audio.Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Played = append(p.Played, buf)
	return nil
}

// Count returns the number of played buffers
func (p *MockPlayer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Played)
}

// MockNotifier records user-visible alerts
type MockNotifier struct {
	mu     sync.Mutex
	Alerts []string
}

// Alert implements session.Notifier
func (n *MockNotifier) Alert(title string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Alerts = append(n.Alerts, fmt.Sprintf("%s: %v", title, err))
}

// Count returns the number of alerts
func (n *MockNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Alerts)
}

// TestDataGenerator generates test data
type TestDataGenerator struct{}

// HelloWorld returns a two word transcription of "Hello world"
func (g *TestDataGenerator) HelloWorld() []phonetic.Word {
	return []phonetic.Word{
		{Word: "Hello", IPA: "həˈloʊ"},
		{Word: "world", IPA: "wɜːrld"},
	}
}

// GeneratePCM generates n samples of a quiet square wave as PCM16 bytes
func (g *TestDataGenerator) GeneratePCM(n int) []byte {
	out := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		v := int16(1000)
		if (i/20)%2 == 1 {
			v = -1000
		}
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

// Report returns a structured evaluation with the given overall score
func (g *TestDataGenerator) Report(overall int) evaluation.Result {
	return evaluation.Result{Report: &evaluation.Report{
		OverallScore:  overall,
		Pronunciation: &evaluation.Dimension{Score: 80, Advice: "..."},
	}}
}
