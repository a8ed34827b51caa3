package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	BatchFile  string
	ListModels bool
	LogLevel   string
	LogPretty  bool
	NoCache    bool
	CacheDir   string

	// Practice flags
	Accent string
	Tone   string
	Speed  int
	Listen bool
	Record time.Duration
	Legend bool

	// Remote flags
	Provider string
	Timeout  time.Duration

	// Gemini flags
	GeminiModel    string
	GeminiTTSModel string
	GeminiVoice    string

	// OpenAI flags
	OpenAIModel    string
	OpenAITTSModel string
	OpenAIVoice    string

	// Server flags
	Addr string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:       "info",
		Accent:         "USA",
		Tone:           "Business-like",
		Speed:          50,
		Provider:       "gemini",
		Timeout:        60 * time.Second,
		GeminiModel:    "gemini-2.5-flash",
		GeminiTTSModel: "gemini-2.5-flash-preview-tts",
		GeminiVoice:    "Kore",
		OpenAIModel:    "gpt-4o-mini",
		OpenAITTSModel: "gpt-4o-mini-tts",
		OpenAIVoice:    "coral",
		Addr:           ":8080",
	}
}
