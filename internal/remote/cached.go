package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// ResponseStore is the storage behind WithCache
type ResponseStore interface {
	Get(kind, key string) ([]byte, bool, error)
	Put(kind, key string, value []byte) error
}

type cachedClient struct {
	next      Client
	store     ResponseStore
	namespace string
	metrics   *metrics.Metrics
}

// WithCache serves repeated Transcribe and Synthesize calls from store.
// namespace separates entries of different backends and models. Evaluate is
// always forwarded since every take is different. Cache failures are logged
// and never fail a request.
func WithCache(next Client, store ResponseStore, namespace string, m *metrics.Metrics) Client {
	return &cachedClient{next: next, store: store, namespace: namespace, metrics: m}
}

func (c *cachedClient) Name() string {
	return c.next.Name()
}

func (c *cachedClient) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	key := internal.Fingerprint(c.namespace, text)

	if raw, ok := c.lookup("transcribe", key); ok {
		var words []phonetic.Word
		if err := json.Unmarshal(raw, &words); err == nil && len(words) > 0 {
			return words, nil
		}
	}

	words, err := c.next.Transcribe(ctx, text)
	if err != nil {
		return nil, err
	}
	// Empty results are most likely a bad response, do not pin them
	if len(words) > 0 {
		if raw, err := json.Marshal(words); err == nil {
			c.store.Put("transcribe", key, raw)
		}
	}
	return words, nil
}

func (c *cachedClient) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	key := internal.Fingerprint(c.namespace, text, string(settings.Accent), string(settings.Tone),
		fmt.Sprint(int(settings.Speed)))

	if raw, ok := c.lookup("synthesize", key); ok && len(raw) > 0 {
		return raw, nil
	}

	data, err := c.next.Synthesize(ctx, text, settings)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put("synthesize", key, data); err != nil {
		log.Warn().Err(err).Msg("failed to cache synthesized audio")
	}
	return data, nil
}

func (c *cachedClient) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	return c.next.Evaluate(ctx, text, take)
}

func (c *cachedClient) lookup(op, key string) ([]byte, bool) {
	raw, ok, err := c.store.Get(op, key)
	if err != nil {
		log.Warn().Err(err).Str("op", op).Msg("cache lookup failed")
		ok = false
	}
	c.metrics.ObserveCache(op, ok)
	return raw, ok
}
