package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/session"
	"codeberg.org/snonux/accentcoach/internal/visualizer"
)

// Event types pushed to the browser
const (
	eventState    = "state"
	eventAudio    = "audio"
	eventSpectrum = "spectrum"
	eventAlert    = "alert"
	eventError    = "error"
)

// command is a JSON text frame sent by the browser
type command struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	voiceFields

	// Format of the following binary frames, for record-start
	MIMEType   string `json:"mimeType,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// event is a JSON text frame sent to the browser
type event struct {
	Type       string         `json:"type"`
	Session    string         `json:"session,omitempty"`
	State      *session.State `json:"state,omitempty"`
	Audio      string         `json:"audio,omitempty"`
	MIMEType   string         `json:"mimeType,omitempty"`
	SampleRate int            `json:"sampleRate,omitempty"`
	Bins       []int          `json:"bins,omitempty"`
	Title      string         `json:"title,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// conn is the part of a websocket connection a session needs
type conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

// wsSession is one browser practice session. Microphone chunks arrive as
// binary frames between record-start and record-stop.
type wsSession struct {
	id   string
	conn conn
	log  zerolog.Logger

	writeMu sync.Mutex

	ctrl        *session.Controller
	source      *audio.ChannelSource
	recorder    *audio.Recorder
	viz         *visualizer.Visualizer
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (s *Server) handleSession(c *websocket.Conn) {
	sess := s.newSession(c, uuid.NewString())

	if m := s.config.Metrics; m != nil {
		m.ActiveSessions.Inc()
		defer m.ActiveSessions.Dec()
	}

	sess.log.Info().Msg("session connected")
	sess.run()
	sess.close()
	sess.log.Info().Msg("session closed")
}

func (s *Server) newSession(c conn, id string) *wsSession {
	ctx, cancel := context.WithCancel(context.Background())
	source := audio.NewChannelSource(audio.Format{MIMEType: audio.MIMERawPCM, SampleRate: audio.CaptureSampleRate})

	sess := &wsSession{
		id:       id,
		conn:     c,
		log:      log.With().Str("session", id).Logger(),
		source:   source,
		recorder: audio.NewRecorder(source),
		viz:      visualizer.New(s.config.SpectrumInterval),
		ctx:      ctx,
		cancel:   cancel,
	}
	sess.ctrl = session.New(s.config.Client, sess.recorder, sess, sess, session.Options{
		ID:       id,
		Debounce: s.config.Debounce,
		Settings: s.config.Settings,
		Metrics:  s.config.Metrics,
	})
	sess.unsubscribe = sess.ctrl.Subscribe(sess.onStateChange)

	initial := sess.ctrl.Snapshot()
	sess.send(event{Type: eventState, Session: id, State: &initial})
	return sess
}

// run reads frames until the connection fails
func (w *wsSession) run() {
	for {
		mt, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.log.Debug().Err(err).Msg("read ended")
			return
		}

		switch mt {
		case websocket.BinaryMessage:
			if !w.source.Push(msg) {
				w.log.Debug().Int("bytes", len(msg)).Msg("dropping audio outside a take")
			}
		case websocket.TextMessage:
			w.handleCommand(msg)
		}
	}
}

func (w *wsSession) close() {
	w.unsubscribe()
	w.ctrl.Close()
	w.cancel()
	w.wg.Wait()
	w.viz.Stop()
}

func (w *wsSession) handleCommand(raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		w.sendError(errors.New("invalid command JSON"))
		return
	}

	switch cmd.Type {
	case "text":
		w.ctrl.SetText(cmd.Text)

	case "transcribe":
		text := cmd.Text
		if text == "" {
			text = w.ctrl.Snapshot().Text
		}
		w.async(func(ctx context.Context) error {
			return w.ctrl.RequestTranscription(ctx, text)
		})

	case "settings":
		settings, err := cmd.apply(w.ctrl.Snapshot().Settings)
		if err == nil {
			err = w.ctrl.SetSettings(settings)
		}
		if err != nil {
			w.sendError(err)
		}

	case "play":
		w.async(w.ctrl.Play)

	case "record-start":
		format := audio.Format{MIMEType: audio.MIMERawPCM, SampleRate: audio.CaptureSampleRate}
		if cmd.MIMEType != "" {
			format.MIMEType = cmd.MIMEType
		}
		if cmd.SampleRate > 0 {
			format.SampleRate = cmd.SampleRate
		}
		w.source.SetFormat(format)

		// Synchronous so that the next binary frame finds the take open
		if err := w.ctrl.BeginRecording(w.ctx); err != nil {
			w.sendError(err)
		}

	case "record-stop":
		w.async(w.ctrl.EndRecording)

	default:
		w.sendError(errors.New("unknown command: " + cmd.Type))
	}
}

// async runs a controller operation off the read loop
func (w *wsSession) async(fn func(ctx context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		err := fn(w.ctx)
		if err == nil || errors.Is(err, session.ErrSuperseded) || errors.Is(err, context.Canceled) {
			return
		}
		w.sendError(err)
	}()
}

func (w *wsSession) onStateChange(s session.State) {
	if s.Recording && w.source.Format().MIMEType == audio.MIMERawPCM {
		if err := w.viz.Start(w.recorder, w.sendSpectrum); err != nil {
			w.log.Warn().Err(err).Msg("spectrum unavailable")
		}
	} else if !s.Recording {
		w.viz.Stop()
	}
	w.send(event{Type: eventState, Session: w.id, State: &s})
}

func (w *wsSession) sendSpectrum(bins []byte) {
	bars := visualizer.Bars(bins, 32)
	out := make([]int, len(bars))
	for i, b := range bars {
		out[i] = int(b)
	}
	w.send(event{Type: eventSpectrum, Bins: out})
}

// Play implements audio.Player by shipping the buffer to the browser
func (w *wsSession) Play(buf audio.Buffer) error {
	wav, err := buf.WAV()
	if err != nil {
		return err
	}
	return w.send(event{
		Type:       eventAudio,
		Audio:      base64.StdEncoding.EncodeToString(wav),
		MIMEType:   audio.MIMEWAV,
		SampleRate: buf.SampleRate,
	})
}

// Alert implements session.Notifier
func (w *wsSession) Alert(title string, err error) {
	w.send(event{Type: eventAlert, Title: title, Error: err.Error()})
}

func (w *wsSession) sendError(err error) {
	w.send(event{Type: eventError, Error: err.Error()})
}

func (w *wsSession) send(e event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.log.Debug().Err(err).Str("event", e.Type).Msg("write failed")
		return err
	}
	return nil
}
