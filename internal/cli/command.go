package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/remote"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "accentcoach [text]",
		Short: "English Pronunciation Coach",
		Long: `accentcoach helps you practice spoken English.

It shows the phonetic breakdown of a sentence with linking and reduced
words, plays it back in the accent, tone and speed you pick, records
your attempt and scores it.

Examples:
  accentcoach                                  # Launch interactive GUI (default)
  accentcoach "Turn it off"                    # Print the phonetic breakdown
  accentcoach "Turn it off" --listen           # ... and play it back
  accentcoach "Turn it off" --record 5s        # ... and score a 5 second take
  accentcoach --batch sentences.txt            # Break down every line of a file
  accentcoach serve --addr :8080               # Serve the HTTP and websocket API`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateServeCommand creates the serve subcommand; run is called with the
// parsed flags
func CreateServeCommand(flags *Flags, run func(cmd *cobra.Command) error) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and websocket API",
		Long: `serve exposes transcription, synthesis and evaluation over HTTP and
runs one practice session per websocket connection, so a browser can
stream its microphone and drive the coach remotely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	serveCmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	return serveCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultCacheDir := filepath.Join(home, ".cache", "accentcoach")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.accentcoach.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.LogPretty, "log-pretty", false, "Human readable log output")
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", flags.Provider, "Remote service: gemini or openai")
	cmd.PersistentFlags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout of a single remote request")
	cmd.PersistentFlags().BoolVar(&flags.NoCache, "no-cache", false, "Do not cache transcriptions and synthesized audio")
	cmd.PersistentFlags().StringVar(&flags.CacheDir, "cache-dir", defaultCacheDir, "Response cache directory")

	// Practice flags
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Break down sentences from file (one per line)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available models of the selected provider")
	cmd.Flags().StringVarP(&flags.Accent, "accent", "a", flags.Accent, "Accent: USA, India, Singapore, Australia, HongKong")
	cmd.Flags().StringVarP(&flags.Tone, "tone", "t", flags.Tone, "Tone: Cheerful, Flat, Business-like, Inquisitive, Serious")
	cmd.Flags().IntVarP(&flags.Speed, "speed", "s", flags.Speed, "Speed in percent: 25, 50, 75, 100, 125, 150")
	cmd.Flags().BoolVarP(&flags.Listen, "listen", "l", false, "Play the sentence after the breakdown")
	cmd.Flags().DurationVarP(&flags.Record, "record", "r", 0, "Record an attempt of this length and score it")
	cmd.Flags().BoolVar(&flags.Legend, "legend", false, "Print a word table and the symbol legend")

	// Gemini flags
	cmd.PersistentFlags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for transcription and scoring")
	cmd.PersistentFlags().StringVar(&flags.GeminiTTSModel, "gemini-tts-model", flags.GeminiTTSModel, "Gemini speech model")
	cmd.PersistentFlags().StringVar(&flags.GeminiVoice, "gemini-voice", flags.GeminiVoice, "Gemini prebuilt voice, e.g. Kore, Puck, Charon")

	// OpenAI flags
	cmd.PersistentFlags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for transcription and scoring")
	cmd.PersistentFlags().StringVar(&flags.OpenAITTSModel, "openai-tts-model", flags.OpenAITTSModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.PersistentFlags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", cmd.PersistentFlags().Lookup("log-pretty"))
	viper.BindPFlag("remote.provider", cmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("remote.timeout", cmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("cache.disabled", cmd.PersistentFlags().Lookup("no-cache"))
	viper.BindPFlag("cache.directory", cmd.PersistentFlags().Lookup("cache-dir"))
	viper.BindPFlag("voice.accent", cmd.Flags().Lookup("accent"))
	viper.BindPFlag("voice.tone", cmd.Flags().Lookup("tone"))
	viper.BindPFlag("voice.speed", cmd.Flags().Lookup("speed"))
	// Bind remote model flags
	viper.BindPFlag("gemini.model", cmd.PersistentFlags().Lookup("gemini-model"))
	viper.BindPFlag("gemini.tts_model", cmd.PersistentFlags().Lookup("gemini-tts-model"))
	viper.BindPFlag("gemini.voice", cmd.PersistentFlags().Lookup("gemini-voice"))
	viper.BindPFlag("openai.model", cmd.PersistentFlags().Lookup("openai-model"))
	viper.BindPFlag("openai.tts_model", cmd.PersistentFlags().Lookup("openai-tts-model"))
	viper.BindPFlag("openai.voice", cmd.PersistentFlags().Lookup("openai-voice"))
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded first; variables already set in the environment win.
func InitConfig(cfgFile string) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".accentcoach" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".accentcoach")
	}

	// Environment variables, e.g. ACCENTCOACH_REMOTE_PROVIDER
	viper.SetEnvPrefix("ACCENTCOACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.key")
}

// RemoteConfig assembles the remote client configuration from flags,
// config file and environment
func RemoteConfig() *remote.Config {
	cfg := remote.DefaultConfig()

	if v := viper.GetString("remote.provider"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if d := viper.GetDuration("remote.timeout"); d > 0 {
		cfg.Timeout = d
	}

	cfg.GeminiKey = GetGeminiKey()
	setIfNotEmpty(&cfg.GeminiModel, viper.GetString("gemini.model"))
	setIfNotEmpty(&cfg.GeminiTTSModel, viper.GetString("gemini.tts_model"))
	setIfNotEmpty(&cfg.GeminiVoice, viper.GetString("gemini.voice"))

	cfg.OpenAIKey = GetOpenAIKey()
	setIfNotEmpty(&cfg.OpenAIModel, viper.GetString("openai.model"))
	setIfNotEmpty(&cfg.OpenAITTSModel, viper.GetString("openai.tts_model"))
	setIfNotEmpty(&cfg.OpenAIVoice, viper.GetString("openai.voice"))
	setIfNotEmpty(&cfg.OpenAISTTModel, viper.GetString("openai.stt_model"))

	return cfg
}

// VoiceSettings returns the configured accent, tone and speed
func VoiceSettings() (voice.Settings, error) {
	settings := voice.DefaultSettings()

	if v := viper.GetString("voice.accent"); v != "" {
		accent, err := voice.ParseAccent(v)
		if err != nil {
			return settings, err
		}
		settings.Accent = accent
	}
	if v := viper.GetString("voice.tone"); v != "" {
		tone, err := voice.ParseTone(v)
		if err != nil {
			return settings, err
		}
		settings.Tone = tone
	}
	if v := viper.GetString("voice.speed"); v != "" {
		speed, err := voice.ParseSpeed(v)
		if err != nil {
			return settings, err
		}
		settings.Speed = speed
	}

	return settings, nil
}

// CachePath returns the response cache database path, or "" when caching
// is disabled
func CachePath() string {
	if viper.GetBool("cache.disabled") {
		return ""
	}
	dir := viper.GetString("cache.directory")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".cache", "accentcoach")
	}
	return filepath.Join(dir, "responses.db")
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
