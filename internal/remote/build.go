package remote

import (
	"context"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/accentcoach/internal/metrics"
)

// Options selects the decorators applied by Build
type Options struct {
	Breaker *BreakerConfig
	Cache   ResponseStore
	Metrics *metrics.Metrics
}

// Build creates the configured backend wrapped, from the inside out, with
// metrics, circuit breaking and caching. Only real remote calls are
// measured and only they can trip a breaker.
func Build(ctx context.Context, config *Config, opts Options) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	base, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	var c Client = base
	if opts.Metrics != nil {
		c = WithMetrics(c, opts.Metrics)
	}
	if opts.Breaker != nil {
		bc := *opts.Breaker
		if opts.Metrics != nil {
			hook := bc.OnStateChange
			bc.OnStateChange = func(op string, from, to gobreaker.State) {
				opts.Metrics.BreakerState.WithLabelValues(op).Set(float64(to))
				if hook != nil {
					hook(op, from, to)
				}
			}
		}
		c = WithBreaker(c, bc)
	}
	if opts.Cache != nil {
		c = WithCache(c, opts.Cache, Namespace(config), opts.Metrics)
	}
	return c, nil
}

// Namespace identifies responses of one backend and model set
func Namespace(config *Config) string {
	switch config.Provider {
	case "openai":
		return "openai/" + config.OpenAIModel + "/" + config.OpenAITTSModel + "/" + config.OpenAIVoice
	default:
		return "gemini/" + config.GeminiModel + "/" + config.GeminiTTSModel + "/" + config.GeminiVoice
	}
}
