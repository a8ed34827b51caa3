package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/remote"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// DefaultAddr is the listen address of accentcoach serve
const DefaultAddr = ":8080"

// maxBodySize bounds uploads, a minute of 48 kHz WAV fits comfortably
const maxBodySize = 16 << 20

// Config holds server configuration
type Config struct {
	Client   remote.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Settings voice.Settings

	// Debounce delays transcription of websocket text edits
	Debounce time.Duration
	// SpectrumInterval is the spectrum frame interval on websocket sessions
	SpectrumInterval time.Duration
}

// Server is the HTTP and websocket front end
type Server struct {
	app    *fiber.App
	config Config
}

// New creates the server and registers all routes
func New(config Config) *Server {
	if config.Settings == (voice.Settings{}) {
		config.Settings = voice.DefaultSettings()
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.SpectrumInterval == 0 {
		config.SpectrumInterval = time.Second / 20
	}

	app := fiber.New(fiber.Config{
		AppName:               "accentcoach " + internal.Version,
		BodyLimit:             maxBodySize,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{app: app, config: config}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.observe)

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))

	api := s.app.Group("/api")
	api.Post("/transcribe", s.handleTranscribe)
	api.Post("/synthesize", s.handleSynthesize)
	api.Post("/evaluate", s.handleEvaluate)

	// Require a websocket upgrade on /ws
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/session", websocket.New(s.handleSession))
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	log.Info().Str("addr", addr).Str("provider", s.config.Client.Name()).Msg("server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for open requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// observe records request metrics and an access log line
func (s *Server) observe(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	code := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else if err != nil {
		code = fiber.StatusInternalServerError
	}

	route := c.Route().Path
	if m := s.config.Metrics; m != nil {
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	}
	log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("code", code).
		Dur("took", time.Since(started)).
		Msg("request")
	return err
}

// errorHandler renders errors as {"error": "..."}
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  internal.Version,
		"provider": s.config.Client.Name(),
	})
}
