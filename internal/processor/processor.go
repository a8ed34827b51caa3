package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/batch"
	"codeberg.org/snonux/accentcoach/internal/cache"
	"codeberg.org/snonux/accentcoach/internal/cli"
	"codeberg.org/snonux/accentcoach/internal/gui"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/models"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/remote"
	"codeberg.org/snonux/accentcoach/internal/server"
	"codeberg.org/snonux/accentcoach/internal/session"
)

// cacheMaxAge bounds how long cached transcriptions and audio are served
const cacheMaxAge = 30 * 24 * time.Hour

// Processor handles the main practice flows
type Processor struct {
	flags    *cli.Flags
	out      io.Writer
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *cache.Store

	// Overridable for tests; built on first use otherwise
	client  remote.Client
	capture session.Capture
	player  audio.Player
}

// NewProcessor creates a new processor
func NewProcessor(flags *cli.Flags) *Processor {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Processor{
		flags:    flags,
		out:      os.Stdout,
		registry: reg,
		metrics:  metrics.New(reg),
	}
}

// Client returns the process-wide remote client, building it on first use
func (p *Processor) Client(ctx context.Context) (remote.Client, error) {
	if p.client != nil {
		return p.client, nil
	}

	c, err := remote.Init(ctx, p.buildClient)
	if err != nil {
		return nil, err
	}
	p.client = c
	return c, nil
}

func (p *Processor) buildClient(ctx context.Context) (remote.Client, error) {
	cfg := cli.RemoteConfig()
	breaker := remote.DefaultBreakerConfig()
	opts := remote.Options{Breaker: &breaker, Metrics: p.metrics}

	if path := cli.CachePath(); path != "" {
		store, err := cache.Open(path, cacheMaxAge)
		if err != nil {
			log.Warn().Err(err).Msg("response cache disabled")
		} else {
			p.store = store
			opts.Cache = store
		}
	}

	c, err := remote.Build(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("provider", c.Name()).Str("namespace", remote.Namespace(cfg)).Msg("remote client ready")
	return c, nil
}

func (p *Processor) newController(ctx context.Context) (*session.Controller, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := cli.VoiceSettings()
	if err != nil {
		return nil, err
	}
	if p.capture == nil {
		p.capture = audio.NewRecorder(audio.NewCommandSource())
	}
	if p.player == nil {
		p.player = audio.NewCommandPlayer()
	}

	// Errors are returned to the command line, no alerts needed
	return session.New(client, p.capture, p.player, nil, session.Options{
		Settings: settings,
		Metrics:  p.metrics,
	}), nil
}

// ProcessSingleText breaks down one sentence and optionally plays it and
// scores a recorded attempt
func (p *Processor) ProcessSingleText(ctx context.Context, text string) error {
	if err := audio.ValidateText(text); err != nil {
		return fmt.Errorf("invalid text '%s': %w", text, err)
	}

	ctrl, err := p.newController(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	fmt.Fprintf(p.out, "\nAnalyzing: %s\n", text)
	if err := ctrl.RequestTranscription(ctx, text); err != nil {
		return err
	}

	s := ctrl.Snapshot()
	if !s.HasPhonetics() {
		fmt.Fprintln(p.out, "No phonetic data returned")
		return nil
	}
	p.printPhonetics(s.Words)

	if p.flags.Listen {
		p.listen(text, s.Settings.String(), func() error {
			return ctrl.Play(ctx)
		})
	}

	if p.flags.Record > 0 {
		return p.record(ctx, ctrl, p.flags.Record)
	}
	return nil
}

func (p *Processor) printPhonetics(words []phonetic.Word) {
	fmt.Fprintf(p.out, "  %s\n", phonetic.Format(words))
	if p.flags.Legend {
		fmt.Fprintf(p.out, "\n%s\n%s\n", phonetic.FormatTable(words), phonetic.Legend)
	}
}

func (p *Processor) listen(text, voice string, play func() error) {
	fmt.Fprintf(p.out, "  Playing (%s)...\n", voice)
	if err := play(); err != nil {
		fmt.Fprintf(os.Stderr, "Error playing '%s': %v\n", text, err)
		return
	}
	if w, ok := p.player.(interface{ Wait() }); ok {
		w.Wait()
	}
}

func (p *Processor) record(ctx context.Context, ctrl *session.Controller, d time.Duration) error {
	fmt.Fprintf(p.out, "\nRecording for %s, read the sentence aloud now...\n", d)
	if err := ctrl.BeginRecording(ctx); err != nil {
		return err
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
		// Close releases the microphone
		return ctx.Err()
	}

	fmt.Fprintln(p.out, "Evaluating...")
	if err := ctrl.EndRecording(ctx); err != nil {
		return err
	}

	s := ctrl.Snapshot()
	if s.Evaluation == nil {
		fmt.Fprintln(p.out, "No evaluation available (see log for details)")
		return nil
	}
	fmt.Fprintf(p.out, "\n%s\n", s.Evaluation.Format())
	return nil
}

// ProcessBatch breaks down every sentence of the batch file
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	// Validate sentences
	for _, entry := range entries {
		if err := audio.ValidateText(entry.Text); err != nil {
			return fmt.Errorf("invalid sentence on line %d: %w", entry.Line, err)
		}
	}

	ctrl, err := p.newController(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	base := ctrl.Snapshot().Settings

	// Track statistics
	processedCount := 0
	emptyCount := 0
	errorCount := 0

	for i, entry := range entries {
		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Text)

		if err := ctrl.RequestTranscription(ctx, entry.Text); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", entry.Text, err)
			errorCount++
			continue
		}

		s := ctrl.Snapshot()
		if !s.HasPhonetics() {
			fmt.Fprintln(p.out, "  No phonetic data returned")
			emptyCount++
			continue
		}
		p.printPhonetics(s.Words)
		processedCount++

		if p.flags.Listen {
			settings := entry.Voice.Apply(base)
			p.listen(entry.Text, settings.String(), func() error {
				return ctrl.RequestPlayback(ctx, entry.Text, settings)
			})
		}
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total sentences: %d\n", len(entries))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	if emptyCount > 0 {
		fmt.Fprintf(p.out, "No data: %d\n", emptyCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "================================\n")

	return nil
}

// ListModels prints the models of the configured provider
func (p *Processor) ListModels(ctx context.Context) error {
	cfg := cli.RemoteConfig()

	var source models.Source
	switch cfg.Provider {
	case "openai":
		o, err := remote.NewOpenAI(cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrNoSource, err)
		}
		source = o
	default:
		g, err := remote.NewGemini(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrNoSource, err)
		}
		source = g
	}

	lister := models.NewLister(source)
	return lister.ListAvailableModels(ctx)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	settings, err := cli.VoiceSettings()
	if err != nil {
		return err
	}

	app := gui.New(&gui.Config{
		Client:    client,
		Settings:  settings,
		Metrics:   p.metrics,
		Debounce:  session.DefaultDebounce,
		LogLevel:  viper.GetString("log.level"),
		LogPretty: viper.GetBool("log.pretty"),
	})
	app.Run()

	return nil
}

// RunServer serves the HTTP and websocket API until ctx is done
func (p *Processor) RunServer(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	settings, err := cli.VoiceSettings()
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Client:   client,
		Metrics:  p.metrics,
		Gatherer: p.registry,
		Settings: settings,
		Debounce: session.DefaultDebounce,
	})

	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = p.flags.Addr
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		return srv.Shutdown()
	}
}

// Close releases the response cache
func (p *Processor) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}
