package remote

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// BreakerConfig configures the per-operation circuit breakers
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens a breaker
	MaxFailures uint32
	// OpenTimeout is how long an open breaker rejects calls before probing
	OpenTimeout time.Duration
	// OnStateChange is called after every state change
	OnStateChange func(op string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 3,
		OpenTimeout: 30 * time.Second,
	}
}

type breakerClient struct {
	next       Client
	transcribe *gobreaker.CircuitBreaker
	synthesize *gobreaker.CircuitBreaker
	evaluate   *gobreaker.CircuitBreaker
}

// WithBreaker guards each operation of next with its own circuit breaker.
// An open breaker fails fast with gobreaker.ErrOpenState.
func WithBreaker(next Client, config BreakerConfig) Client {
	newBreaker := func(op string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        op,
			MaxRequests: 1,
			Timeout:     config.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				// The caller giving up says nothing about the service
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("op", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
				if config.OnStateChange != nil {
					config.OnStateChange(name, from, to)
				}
			},
		})
	}

	return &breakerClient{
		next:       next,
		transcribe: newBreaker("transcribe"),
		synthesize: newBreaker("synthesize"),
		evaluate:   newBreaker("evaluate"),
	}
}

func (b *breakerClient) Name() string {
	return b.next.Name()
}

func (b *breakerClient) Transcribe(ctx context.Context, text string) ([]phonetic.Word, error) {
	res, err := b.transcribe.Execute(func() (interface{}, error) {
		return b.next.Transcribe(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return res.([]phonetic.Word), nil
}

func (b *breakerClient) Synthesize(ctx context.Context, text string, settings voice.Settings) ([]byte, error) {
	res, err := b.synthesize.Execute(func() (interface{}, error) {
		return b.next.Synthesize(ctx, text, settings)
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (b *breakerClient) Evaluate(ctx context.Context, text string, take audio.Recording) (evaluation.Result, error) {
	res, err := b.evaluate.Execute(func() (interface{}, error) {
		return b.next.Evaluate(ctx, text, take)
	})
	if err != nil {
		return evaluation.Result{}, err
	}
	return res.(evaluation.Result), nil
}
