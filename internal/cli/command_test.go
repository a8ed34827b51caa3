package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal/voice"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "accentcoach [text]" {
		t.Errorf("Expected Use to be 'accentcoach [text]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Pronunciation Coach") {
		t.Errorf("Expected Short description to contain 'Pronunciation Coach'")
	}

	// Test that flags are set up
	flagTests := []struct {
		name       string
		persistent bool
	}{
		{"config", true},
		{"log-level", true},
		{"log-pretty", true},
		{"provider", true},
		{"timeout", true},
		{"no-cache", true},
		{"cache-dir", true},
		{"gemini-model", true},
		{"gemini-tts-model", true},
		{"gemini-voice", true},
		{"openai-model", true},
		{"openai-tts-model", true},
		{"openai-voice", true},
		{"batch", false},
		{"list-models", false},
		{"accent", false},
		{"tone", false},
		{"speed", false},
		{"listen", false},
		{"record", false},
		{"legend", false},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.persistent {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestCreateServeCommand(t *testing.T) {
	resetViper(t)
	flags := NewFlags()
	root := CreateRootCommand(flags)

	called := false
	root.AddCommand(CreateServeCommand(flags, func(cmd *cobra.Command) error {
		called = true
		return nil
	}))

	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:9999", "--provider", "openai"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	if !called {
		t.Error("serve was not run")
	}
	if flags.Addr != "127.0.0.1:9999" || viper.GetString("server.addr") != "127.0.0.1:9999" {
		t.Errorf("addr = %s / %s", flags.Addr, viper.GetString("server.addr"))
	}
	if viper.GetString("remote.provider") != "openai" {
		t.Error("persistent flags should reach subcommands")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	cacheFlag := cmd.PersistentFlags().Lookup("cache-dir")
	if cacheFlag == nil {
		t.Fatal("cache-dir flag not found")
	}

	home, _ := os.UserHomeDir()
	expectedDefault := filepath.Join(home, ".cache", "accentcoach")
	if cacheFlag.DefValue != expectedDefault {
		t.Errorf("Expected default cache dir to be %s, got %s", expectedDefault, cacheFlag.DefValue)
	}

	speedFlag := cmd.Flags().Lookup("speed")
	if speedFlag == nil || speedFlag.DefValue != "50" || speedFlag.Shorthand != "s" {
		t.Errorf("unexpected speed flag %+v", speedFlag)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `remote:
  provider: openai
openai:
  key: test-key
voice:
  accent: India
  speed: 75`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if viper.GetString("remote.provider") != "openai" {
					t.Error("config file not read")
				}
				if viper.GetInt("voice.speed") != 75 {
					t.Error("voice.speed not read")
				}
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
			check:     func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			InitConfig(tt.setupFunc(t))

			// Test environment variable prefix
			t.Setenv("ACCENTCOACH_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			// Nested keys map to underscores
			t.Setenv("ACCENTCOACH_SERVER_ADDR", ":9090")
			if viper.GetString("server.addr") != ":9090" {
				t.Error("Nested key not read from environment")
			}

			tt.check(t)
		})
	}
}

func TestInitConfigLoadsDotEnv(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ACCENTCOACH_DOTENV_PROBE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	defer os.Unsetenv("ACCENTCOACH_DOTENV_PROBE")

	InitConfig("")

	if viper.GetString("dotenv_probe") != "from-dotenv" {
		t.Errorf("dotenv_probe = %q", viper.GetString("dotenv_probe"))
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{"from environment", "env-test-key", "config-test-key", "env-test-key"},
		{"from config when no env", "", "config-test-key", "config-test-key"},
		{"empty when neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set("openai.key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	tests := []struct {
		name      string
		gemini    string
		google    string
		configKey string
		expected  string
	}{
		{"gemini variable first", "gemini-key", "google-key", "cfg", "gemini-key"},
		{"google variable second", "", "google-key", "cfg", "google-key"},
		{"config last", "", "", "cfg", "cfg"},
		{"empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("GOOGLE_API_KEY", tt.google)
			if tt.configKey != "" {
				viper.Set("gemini.key", tt.configKey)
			}

			if got := GetGeminiKey(); got != tt.expected {
				t.Errorf("GetGeminiKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("accent", "Australia")
	cmd.Flags().Set("speed", "125")
	cmd.PersistentFlags().Set("openai-tts-model", "tts-1-hd")
	cmd.PersistentFlags().Set("timeout", "5s")

	// Test that values are bound
	if viper.GetString("voice.accent") != "Australia" {
		t.Errorf("Expected voice.accent to be Australia, got %s", viper.GetString("voice.accent"))
	}
	if viper.GetInt("voice.speed") != 125 {
		t.Errorf("Expected voice.speed to be 125, got %d", viper.GetInt("voice.speed"))
	}
	if viper.GetString("openai.tts_model") != "tts-1-hd" {
		t.Errorf("Expected openai.tts_model to be tts-1-hd, got %s", viper.GetString("openai.tts_model"))
	}
	if viper.GetDuration("remote.timeout") != 5*time.Second {
		t.Errorf("Expected remote.timeout to be 5s, got %s", viper.GetDuration("remote.timeout"))
	}
}

func TestRemoteConfig(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())
	cmd.PersistentFlags().Set("provider", "OpenAI")
	cmd.PersistentFlags().Set("openai-voice", "sage")

	cfg := RemoteConfig()
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %s, want openai", cfg.Provider)
	}
	if cfg.GeminiKey != "g-key" || cfg.OpenAIKey != "o-key" {
		t.Error("API keys not picked up")
	}
	if cfg.OpenAIVoice != "sage" || cfg.GeminiVoice != "Kore" {
		t.Errorf("voices = %s / %s", cfg.OpenAIVoice, cfg.GeminiVoice)
	}
	if cfg.OpenAISTTModel != "whisper-1" {
		t.Error("unset keys keep their defaults")
	}
}

func TestVoiceSettings(t *testing.T) {
	tests := []struct {
		name    string
		accent  string
		tone    string
		speed   string
		want    voice.Settings
		wantErr bool
	}{
		{"defaults", "", "", "", voice.DefaultSettings(), false},
		{"custom", "HongKong", "serious", "75", voice.Settings{Accent: voice.AccentHongKong, Tone: voice.ToneSerious, Speed: 75}, false},
		{"bad accent", "Mars", "", "", voice.Settings{}, true},
		{"bad speed", "", "", "60", voice.Settings{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			if tt.accent != "" {
				viper.Set("voice.accent", tt.accent)
			}
			if tt.tone != "" {
				viper.Set("voice.tone", tt.tone)
			}
			if tt.speed != "" {
				viper.Set("voice.speed", tt.speed)
			}

			got, err := VoiceSettings()
			if (err != nil) != tt.wantErr {
				t.Fatalf("VoiceSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("VoiceSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	resetViper(t)
	viper.Set("cache.directory", "/tmp/ac")
	if got := CachePath(); got != filepath.Join("/tmp/ac", "responses.db") {
		t.Errorf("CachePath() = %s", got)
	}

	viper.Set("cache.disabled", true)
	if CachePath() != "" {
		t.Error("CachePath() should be empty when caching is disabled")
	}
}
