package remote

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

type instrumentedClient struct {
	next    Client
	metrics *metrics.Metrics
}

// WithMetrics records request counts and latency of every call to next and
// logs each call at debug level
func WithMetrics(next Client, m *metrics.Metrics) Client {
	return &instrumentedClient{next: next, metrics: m}
}

func (i *instrumentedClient) Name() string {
	return i.next.Name()
}

func (i *instrumentedClient) observe(op string, started time.Time, err error) {
	i.metrics.ObserveRemote(op, started, err)

	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("backend", i.next.Name()).Str("op", op).Dur("took", time.Since(started)).Msg("remote call")
}

func (i *instrumentedClient) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	started := time.Now()
	words, err := i.next.Transcribe(ctx, text)
	i.observe("transcribe", started, err)
	return words, err
}

func (i *instrumentedClient) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	started := time.Now()
	data, err := i.next.Synthesize(ctx, text, settings)
	i.observe("synthesize", started, err)
	return data, err
}

func (i *instrumentedClient) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	started := time.Now()
	res, err := i.next.Evaluate(ctx, text, take)
	i.observe("evaluate", started, err)
	return res, err
}
