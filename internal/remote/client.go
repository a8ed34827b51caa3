package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

var (
	// ErrNoAudio is returned when a synthesis response carries no audio
	ErrNoAudio = errors.New("no audio data in response")
	// ErrNoAPIKey is returned when the selected backend has no key
	ErrNoAPIKey = errors.New("API key not configured")
)

// Client is the contract with the remote analysis service
type Client interface {
	// Transcribe returns the phonetic breakdown of text in input order. A
	// response that cannot be decoded yields an empty slice, not an error.
	Transcribe(ctx context.Context, text string) ([]phonetic.Word, error)

	// Synthesize returns mono PCM16 little-endian audio at 24 kHz
	Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error)

	// Evaluate scores a recorded attempt at reading text
	Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error)

	// Name returns the backend name
	Name() string
}

// Config holds remote service configuration
type Config struct {
	Provider string // "gemini" or "openai"
	Timeout  time.Duration

	GeminiKey      string
	GeminiModel    string // text and audio understanding model
	GeminiTTSModel string
	GeminiVoice    string // prebuilt voice name

	OpenAIKey      string
	OpenAIModel    string // chat model
	OpenAITTSModel string
	OpenAIVoice    string
	OpenAISTTModel string // transcription model used for scoring
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:       "gemini",
		Timeout:        60 * time.Second,
		GeminiModel:    "gemini-2.5-flash",
		GeminiTTSModel: "gemini-2.5-flash-preview-tts",
		GeminiVoice:    "Kore",
		OpenAIModel:    "gpt-4o-mini",
		OpenAITTSModel: "gpt-4o-mini-tts",
		OpenAIVoice:    "coral",
		OpenAISTTModel: "whisper-1",
	}
}

// New creates the backend selected by config
func New(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "gemini", "":
		return NewGemini(ctx, config)
	case "openai":
		return NewOpenAI(config)
	default:
		return nil, fmt.Errorf("unknown remote provider: %s", config.Provider)
	}
}

var (
	defaultMu     sync.Mutex
	defaultClient Client
)

// Init builds the process-wide client once. Later calls return the client
// built first; there is no teardown.
func Init(ctx context.Context, build func(ctx context.Context) (Client, error)) (Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return defaultClient, nil
	}
	c, err := build(ctx)
	if err != nil {
		return nil, err
	}
	defaultClient = c
	return c, nil
}

// Default returns the process-wide client, or nil before Init
func Default() Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

// withTimeout bounds a single remote call
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
