package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/evaluation"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/remote"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

var (
	// ErrEmptyText is returned when an operation needs text and has none
	ErrEmptyText = errors.New("text is empty")
	// ErrNoPhonetics is returned before any transcription exists
	ErrNoPhonetics = errors.New("no phonetic transcription yet")
	// ErrBusy is returned while a conflicting operation is in flight
	ErrBusy = errors.New("operation already in progress")
	// ErrSuperseded is returned when a newer transcription replaced this one
	ErrSuperseded = errors.New("superseded by a newer request")

	errUnchanged = errors.New("unchanged")
)

// DefaultDebounce is the quiet period before edited text is re-transcribed
const DefaultDebounce = time.Second

// Notifier shows blocking alerts to the user
type Notifier interface {
	Alert(title string, err error)
}

// Capture is the microphone side of a recording cycle
type Capture interface {
	Start(ctx context.Context) error
	Stop() (audio.Recording, error)
}

// Options configures a Controller
type Options struct {
	// ID tags log lines; a random id is used when empty
	ID string
	// Debounce enables re-transcription after SetText when positive
	Debounce time.Duration
	// Settings are the initial voice settings, defaults when zero
	Settings voice.Settings
	Metrics  *metrics.Metrics
}

// Controller sequences one practice session. It is safe for concurrent use;
// remote calls block the calling goroutine only.
type Controller struct {
	id       string
	client   remote.Client
	capture  Capture
	player   audio.Player
	notifier Notifier
	metrics  *metrics.Metrics
	log      zerolog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	debounce *Debouncer

	// recMu serializes starting and stopping the microphone
	recMu sync.Mutex

	mu            sync.Mutex
	state         State
	transcribeSeq uint64
	cycle         uint64
	listeners     map[int]func(State)
	nextListener  int
}

// New creates a session controller. notifier may be nil.
func New(client remote.Client, capture Capture, player audio.Player, notifier Notifier, opts Options) *Controller {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	settings := opts.Settings
	if settings == (voice.Settings{}) {
		settings = voice.DefaultSettings()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:        opts.ID,
		client:    client,
		capture:   capture,
		player:    player,
		notifier:  notifier,
		metrics:   opts.Metrics,
		log:       log.With().Str("session", opts.ID).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Settings: settings},
		listeners: make(map[int]func(State)),
	}
	if opts.Debounce > 0 {
		c.debounce = NewDebouncer(opts.Debounce)
	}
	return c
}

// ID returns the session id
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every new state. fn runs on the
// goroutine that caused the change and must not block.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// update runs step under the state lock and commits the event it returns.
// An error from step leaves the state untouched. Listeners are notified
// after the lock is released.
func (c *Controller) update(step func(s State) (Event, error)) (State, error) {
	c.mu.Lock()
	e, err := step(c.state)
	if err != nil {
		s := c.state
		c.mu.Unlock()
		return s, err
	}
	c.state = transition(c.state, e)
	s := c.state
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.metrics.ObserveTransition(e.Kind.String())
	for _, fn := range fns {
		fn(s)
	}
	return s, nil
}

func (c *Controller) emit(e Event) State {
	s, _ := c.update(func(State) (Event, error) { return e, nil })
	return s
}

// SetText records edited input. With debouncing enabled a transcription of
// the latest text runs once the input has been quiet for the delay.
func (c *Controller) SetText(text string) {
	_, err := c.update(func(s State) (Event, error) {
		if s.Text == text {
			return Event{}, errUnchanged
		}
		return Event{Kind: TextEdited, Text: text}, nil
	})
	if err != nil || c.debounce == nil {
		return
	}

	c.debounce.Trigger(func() {
		if err := c.RequestTranscription(c.ctx, text); err != nil && !errors.Is(err, ErrSuperseded) {
			c.log.Debug().Err(err).Msg("debounced transcription failed")
		}
	})
}

// SetSettings changes the voice used by the next playback. Phonetics are
// not refetched.
func (c *Controller) SetSettings(settings voice.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	c.emit(Event{Kind: SettingsChanged, Settings: settings})
	return nil
}

// RequestTranscription replaces the phonetic breakdown with one for text.
// Blank text clears the breakdown without a request. Only the latest
// request may change state; older responses return ErrSuperseded.
func (c *Controller) RequestTranscription(ctx context.Context, text string) error {
	if c.debounce != nil {
		c.debounce.Cancel()
	}

	var seq uint64
	s, _ := c.update(func(State) (Event, error) {
		c.transcribeSeq++
		seq = c.transcribeSeq
		if strings.TrimSpace(text) == "" {
			return Event{Kind: PhoneticsCleared, Text: text}, nil
		}
		// the current evaluation no longer matches the text
		c.cycle++
		return Event{Kind: TranscribeStart, Text: text}, nil
	})
	if !s.Fetching {
		return nil
	}

	started := time.Now()
	words, err := c.client.Transcribe(ctx, text)

	_, stale := c.update(func(State) (Event, error) {
		if seq != c.transcribeSeq {
			return Event{}, ErrSuperseded
		}
		if err != nil {
			return Event{Kind: TranscribeDone}, nil
		}
		return Event{Kind: TranscribeDone, Words: words}, nil
	})
	if stale != nil {
		c.log.Debug().Uint64("seq", seq).Msg("dropping superseded transcription")
		return stale
	}

	if err != nil {
		c.log.Error().Err(err).Str("text", text).Msg("transcription failed")
		c.notifier.Alert("Transcription failed", err)
		return fmt.Errorf("transcription failed: %w", err)
	}

	c.log.Debug().Int("words", len(words)).Dur("took", time.Since(started)).Msg("transcribed")
	return nil
}

// Play synthesizes the current text with the current settings
func (c *Controller) Play(ctx context.Context) error {
	s := c.Snapshot()
	return c.RequestPlayback(ctx, s.Text, s.Settings)
}

// RequestPlayback synthesizes text and plays it as soon as it arrives. It
// needs a transcription first. Remote and playback failures are logged and
// not returned; only guard violations are errors.
func (c *Controller) RequestPlayback(ctx context.Context, text string, settings voice.Settings) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	_, err := c.update(func(s State) (Event, error) {
		if !s.HasPhonetics() {
			return Event{}, ErrNoPhonetics
		}
		if s.Generating {
			return Event{}, fmt.Errorf("%w: audio is being generated", ErrBusy)
		}
		return Event{Kind: SynthesisStart}, nil
	})
	if err != nil {
		return err
	}
	defer c.emit(Event{Kind: SynthesisDone})

	pcm, err := c.client.Synthesize(ctx, text, settings)
	if err != nil {
		c.log.Warn().Err(err).Str("voice", settings.String()).Msg("synthesis failed")
		return nil
	}

	buf, err := audio.DecodePCM16(pcm)
	if err != nil {
		c.log.Warn().Err(err).Msg("synthesized audio could not be decoded")
		return nil
	}
	if err := c.player.Play(buf); err != nil {
		c.log.Warn().Err(err).Msg("playback failed")
	}
	return nil
}

func recordGuard(s State) error {
	switch {
	case !s.HasPhonetics():
		return ErrNoPhonetics
	case s.Recording:
		return fmt.Errorf("%w: already recording", ErrBusy)
	case s.Fetching:
		return fmt.Errorf("%w: transcription in flight", ErrBusy)
	case s.Evaluating:
		return fmt.Errorf("%w: evaluation in flight", ErrBusy)
	}
	return nil
}

// BeginRecording opens the microphone and starts a new recording cycle,
// dropping the previous evaluation. A microphone failure is alerted and
// returned; the session does not enter recording.
func (c *Controller) BeginRecording(ctx context.Context) error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	if err := recordGuard(c.Snapshot()); err != nil {
		return err
	}

	if err := c.capture.Start(ctx); err != nil {
		c.log.Error().Err(err).Msg("microphone unavailable")
		c.notifier.Alert("Microphone unavailable", err)
		return err
	}

	_, err := c.update(func(s State) (Event, error) {
		if err := recordGuard(s); err != nil {
			return Event{}, err
		}
		c.cycle++
		return Event{Kind: RecordStart}, nil
	})
	if err != nil {
		// lost a race with a transcription; give the device back
		if _, stopErr := c.capture.Stop(); stopErr != nil {
			c.log.Debug().Err(stopErr).Msg("releasing microphone")
		}
		return err
	}

	c.log.Info().Msg("recording started")
	return nil
}

// EndRecording leaves recording, releases the microphone and evaluates the
// take against the current text. Evaluation failures are logged only.
func (c *Controller) EndRecording(ctx context.Context) error {
	c.recMu.Lock()

	var (
		cycle uint64
		text  string
	)
	_, err := c.update(func(s State) (Event, error) {
		if !s.Recording {
			return Event{}, audio.ErrNotRecording
		}
		cycle, text = c.cycle, s.Text
		return Event{Kind: RecordStop}, nil
	})
	if err != nil {
		c.recMu.Unlock()
		return err
	}

	rec, err := c.capture.Stop()
	c.recMu.Unlock()
	if err != nil {
		c.emit(Event{Kind: EvaluateDone})
		c.log.Warn().Err(err).Msg("recording could not be finalized")
		return fmt.Errorf("failed to finalize recording: %w", err)
	}

	c.log.Info().Dur("duration", rec.Duration).Int("bytes", len(rec.Data)).Msg("recording stopped")
	c.evaluate(ctx, cycle, text, rec)
	return nil
}

// Evaluate scores a finished take against the current text and stores the
// result. It starts its own cycle, so it cannot run during a recording.
func (c *Controller) Evaluate(ctx context.Context, take audio.Recording) (evaluation.Result, error) {
	var (
		cycle uint64
		text  string
	)
	_, err := c.update(func(s State) (Event, error) {
		if s.Recording || s.Evaluating {
			return Event{}, fmt.Errorf("%w: recording cycle in progress", ErrBusy)
		}
		if strings.TrimSpace(s.Text) == "" {
			return Event{}, ErrEmptyText
		}
		c.cycle++
		cycle, text = c.cycle, s.Text
		return Event{Kind: EvaluateStart}, nil
	})
	if err != nil {
		return evaluation.Result{}, err
	}
	return c.evaluate(ctx, cycle, text, take)
}

// evaluate runs the remote call of an evaluation that already entered
// evaluating. The result is stored only if no newer cycle or transcription
// has invalidated it.
func (c *Controller) evaluate(ctx context.Context, cycle uint64, text string, take audio.Recording) (evaluation.Result, error) {
	res, err := c.client.Evaluate(ctx, text, take)

	stale := false
	c.update(func(State) (Event, error) {
		stale = cycle != c.cycle
		if err != nil || stale {
			return Event{Kind: EvaluateDone}, nil
		}
		return Event{Kind: EvaluateDone, Result: &res}, nil
	})

	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("evaluation failed")
		return evaluation.Result{}, err
	case stale:
		c.log.Debug().Uint64("cycle", cycle).Msg("dropping evaluation of an invalidated cycle")
		return res, ErrSuperseded
	}

	if res.Report != nil {
		c.log.Info().Int("score", res.Report.OverallScore).Msg("evaluated")
	}
	return res, nil
}

// Close cancels a pending debounced transcription and releases the
// microphone if a take is still open
func (c *Controller) Close() {
	if c.debounce != nil {
		c.debounce.Cancel()
	}
	c.cancel()

	c.recMu.Lock()
	defer c.recMu.Unlock()
	_, err := c.update(func(s State) (Event, error) {
		if !s.Recording {
			return Event{}, audio.ErrNotRecording
		}
		return Event{Kind: RecordStop}, nil
	})
	if err != nil {
		return
	}
	if _, err := c.capture.Stop(); err != nil {
		c.log.Debug().Err(err).Msg("releasing microphone on close")
	}
	c.emit(Event{Kind: EvaluateDone})
}

type nopNotifier struct{}

func (nopNotifier) Alert(string, error) {}
