package remote

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// Gemini implements Client on the Gemini API
type Gemini struct {
	client *genai.Client
	config *Config
}

// NewGemini creates a Gemini backed client
func NewGemini(ctx context.Context, config *Config) (*Gemini, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini %w", ErrNoAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, config: config}, nil
}

// Name implements Client
func (g *Gemini) Name() string {
	return "gemini"
}

// Transcribe implements Client
func (g *Gemini) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	ctx, cancel := withTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.config.GeminiModel, genai.Text(transcribePrompt(text)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(transcribeSystem, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    wordsSchema,
			Temperature:       genai.Ptr[float32](0.2),
		})
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	return phonetic.Parse([]byte(resp.Text())), nil
}

// Synthesize implements Client
func (g *Gemini) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.config.GeminiTTSModel, genai.Text(synthesisPrompt(text, settings)),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
						VoiceName: g.config.GeminiVoice,
					},
				},
			},
		})
	if err != nil {
		return nil, fmt.Errorf("Gemini TTS error: %w", err)
	}

	data := inlineAudio(resp)
	if len(data) == 0 {
		return nil, ErrNoAudio
	}
	return data, nil
}

// inlineAudio returns the first inline data part of the first candidate.
// The SDK has already decoded the base64 transport encoding.
func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// Evaluate implements Client
func (g *Gemini) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	if len(take.Data) == 0 {
		return evaluation.Result{}, fmt.Errorf("empty recording")
	}

	ctx, cancel := withTimeout(ctx, g.config.Timeout)
	defer cancel()

	mimeType := take.MIMEType
	if mimeType == "" {
		mimeType = audio.MIMEWAV
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(evaluatePrompt(text)),
			genai.NewPartFromBytes(take.Data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.GeminiModel, contents,
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(evaluateSystem, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    evaluationSchema,
			Temperature:       genai.Ptr[float32](0.3),
		})
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("Gemini API error: %w", err)
	}

	return evaluation.Parse([]byte(resp.Text()))
}

// ListModels returns the model names visible to the key
func (g *Gemini) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}

var wordsSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"word":        {Type: genai.TypeString},
			"ipa":         {Type: genai.TypeString},
			"linksToNext": {Type: genai.TypeBoolean},
			"linkingType": {Type: genai.TypeString},
			"isReduced":   {Type: genai.TypeBoolean},
		},
		Required:         []string{"word", "ipa"},
		PropertyOrdering: []string{"word", "ipa", "linksToNext", "linkingType", "isReduced"},
	},
}

var dimensionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":  {Type: genai.TypeInteger},
		"advice": {Type: genai.TypeString},
	},
	Required: []string{"score", "advice"},
}

var evaluationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overallScore":   {Type: genai.TypeInteger},
		"overallAdvice":  {Type: genai.TypeString},
		"pronunciation":  dimensionSchema,
		"prosody":        dimensionSchema,
		"fluency":        dimensionSchema,
		"chunking":       dimensionSchema,
		"expressiveness": dimensionSchema,
	},
	Required: []string{"overallScore", "pronunciation", "prosody", "fluency", "chunking", "expressiveness"},
}
