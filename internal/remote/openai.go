package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// speechFormatPCM is raw 24 kHz PCM16 mono, the synthesis wire format
const speechFormatPCM = openai.SpeechResponseFormat("pcm")

// OpenAI implements Client on the OpenAI API
type OpenAI struct {
	client *openai.Client
	config *Config
}

// NewOpenAI creates an OpenAI backed client
func NewOpenAI(config *Config) (*OpenAI, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI %w", ErrNoAPIKey)
	}

	return &OpenAI{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

// Name implements Client
func (o *OpenAI) Name() string {
	return "openai"
}

// Transcribe implements Client
func (o *OpenAI) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	ctx, cancel := withTimeout(ctx, o.config.Timeout)
	defer cancel()

	content, err := o.chatJSON(ctx, transcribeSystem, transcribeJSONPrompt(text), 0.2)
	if err != nil {
		return nil, err
	}
	return phonetic.Parse([]byte(content)), nil
}

// Synthesize implements Client
func (o *OpenAI) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, o.config.Timeout)
	defer cancel()

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.config.OpenAITTSModel),
		Input:          strings.TrimSpace(text),
		Voice:          openai.SpeechVoice(o.config.OpenAIVoice),
		ResponseFormat: speechFormatPCM,
		Speed:          speechSpeed(settings.Speed),
	}
	// Only the gpt-4o family follows spoken instructions
	if strings.HasPrefix(o.config.OpenAITTSModel, "gpt-4o") {
		req.Instructions = settings.Instruction()
	}

	log.Debug().
		Str("model", o.config.OpenAITTSModel).
		Str("voice", o.config.OpenAIVoice).
		Stringer("settings", settings).
		Msg("OpenAI TTS request")

	response, err := o.client.CreateSpeech(ctx, req)
	if err != nil {
		// Check if it's a model access error
		if strings.Contains(err.Error(), "does not have access to model") {
			return nil, fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try tts-1-hd instead", err, o.config.OpenAITTSModel)
		}
		return nil, fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	data, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoAudio
	}
	return data, nil
}

// speechSpeed maps a speed percentage to the API's 0.25..4.0 multiplier
func speechSpeed(s voice.Speed) float64 {
	f := s.Factor()
	switch {
	case f < 0.25:
		return 0.25
	case f > 4:
		return 4
	}
	return f
}

// Evaluate implements Client. The chat models cannot listen to a recording
// directly, so the take is transcribed first and the transcript is scored
// against the original text.
func (o *OpenAI) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	if len(take.Data) == 0 {
		return evaluation.Result{}, fmt.Errorf("empty recording")
	}

	ctx, cancel := withTimeout(ctx, o.config.Timeout)
	defer cancel()

	tr, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.config.OpenAISTTModel,
		FilePath: "take" + extensionFor(take.MIMEType),
		Reader:   bytes.NewReader(take.Data),
		Language: "en",
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("OpenAI transcription error: %w", err)
	}

	content, err := o.chatJSON(ctx, evaluateSystem, evaluateTranscriptPrompt(text, tr.Text), 0.3)
	if err != nil {
		return evaluation.Result{}, err
	}
	return evaluation.Parse([]byte(content))
}

// chatJSON runs a JSON mode chat completion and returns the message content
func (o *OpenAI) chatJSON(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the model ids visible to the key
func (o *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	models, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	names := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// extensionFor maps a recording MIME type to the file extension the
// transcription endpoint uses to detect the container
func extensionFor(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".wav"
	}
}
