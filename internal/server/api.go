package server

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

type transcribeRequest struct {
	Text string `json:"text"`
}

type transcribeResponse struct {
	Words []phonetic.Word `json:"words"`
}

type synthesizeRequest struct {
	Text string `json:"text"`
	voiceFields
}

type synthesizeResponse struct {
	Audio      string `json:"audio"` // base64 PCM16LE mono
	SampleRate int    `json:"sampleRate"`
}

type evaluateRequest struct {
	Text     string `json:"text"`
	Audio    string `json:"audio"` // base64 recording
	MIMEType string `json:"mimeType"`
}

// voiceFields are optional per-request voice overrides
type voiceFields struct {
	Accent string `json:"accent,omitempty"`
	Tone   string `json:"tone,omitempty"`
	Speed  int    `json:"speed,omitempty"`
}

// apply overrides the set fields of base
func (v voiceFields) apply(base voice.Settings) (voice.Settings, error) {
	s := base
	if v.Accent != "" {
		a, err := voice.ParseAccent(v.Accent)
		if err != nil {
			return base, err
		}
		s.Accent = a
	}
	if v.Tone != "" {
		t, err := voice.ParseTone(v.Tone)
		if err != nil {
			return base, err
		}
		s.Tone = t
	}
	if v.Speed != 0 {
		sp, err := voice.ParseSpeed(strconv.Itoa(v.Speed))
		if err != nil {
			return base, err
		}
		s.Speed = sp
	}
	return s, nil
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// remoteError maps a remote failure to a gateway status
func remoteError(op string, err error) error {
	log.Warn().Err(err).Str("op", op).Msg("remote request failed")
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fiber.NewError(fiber.StatusServiceUnavailable, op+" temporarily unavailable")
	}
	return fiber.NewError(fiber.StatusBadGateway, op+" failed: "+err.Error())
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	var req transcribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid JSON")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest("text is required")
	}

	words, err := s.config.Client.Transcribe(c.UserContext(), req.Text)
	if err != nil {
		return remoteError("transcription", err)
	}
	if words == nil {
		words = []phonetic.Word{}
	}
	return c.JSON(transcribeResponse{Words: words})
}

func (s *Server) handleSynthesize(c *fiber.Ctx) error {
	var req synthesizeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid JSON")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest("text is required")
	}
	settings, err := req.apply(s.config.Settings)
	if err != nil {
		return badRequest(err.Error())
	}

	pcm, err := s.config.Client.Synthesize(c.UserContext(), req.Text, settings)
	if err != nil {
		return remoteError("synthesis", err)
	}
	return c.JSON(synthesizeResponse{
		Audio:      base64.StdEncoding.EncodeToString(pcm),
		SampleRate: audio.SynthesisSampleRate,
	})
}

func (s *Server) handleEvaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid JSON")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest("text is required")
	}
	data, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return badRequest("audio must be base64")
	}
	if len(data) == 0 {
		return badRequest("audio is required")
	}
	if req.MIMEType == "" {
		req.MIMEType = audio.MIMEWAV
	}

	res, err := s.config.Client.Evaluate(c.UserContext(), req.Text, audio.Recording{Data: data, MIMEType: req.MIMEType})
	if err != nil {
		return remoteError("evaluation", err)
	}
	return c.JSON(res)
}
