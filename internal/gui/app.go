package gui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/logging"
	"codeberg.org/snonux/accentcoach/internal/metrics"
	"codeberg.org/snonux/accentcoach/internal/phonetic"
	"codeberg.org/snonux/accentcoach/internal/remote"
	"codeberg.org/snonux/accentcoach/internal/session"
	"codeberg.org/snonux/accentcoach/internal/visualizer"
	"codeberg.org/snonux/accentcoach/internal/voice"
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	textEntry       *PracticeEntry
	analyzeButton   *ttwidget.Button
	listenButton    *ttwidget.Button
	recordButton    *ttwidget.Button
	accentSelect    *widget.Select
	toneSelect      *widget.Select
	speedSelect     *widget.Select
	phoneticDisplay *widget.Label
	statusLabel     *widget.Label
	spectrum        *SpectrumDisplay
	evaluationPanel *EvaluationPanel
	logViewer       *LogViewer

	// Practice session
	ctrl        *session.Controller
	recorder    *audio.Recorder
	visualizer  *visualizer.Visualizer
	unsubscribe func()

	config *Config

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds GUI application configuration
type Config struct {
	Client   remote.Client
	Settings voice.Settings
	Metrics  *metrics.Metrics
	Debounce time.Duration

	// Source feeds the microphone recorder; the system recorder by default
	Source audio.Source
	// Player plays synthesized audio; the system player by default
	Player audio.Player

	LogLevel  string
	LogPretty bool
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config.Debounce == 0 {
		config.Debounce = session.DefaultDebounce
	}
	if config.Source == nil {
		config.Source = audio.NewCommandSource()
	}
	if config.Player == nil {
		config.Player = audio.NewCommandPlayer()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:        app.NewWithID("org.codeberg.snonux.accentcoach"),
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
		recorder:   audio.NewRecorder(config.Source),
		visualizer: visualizer.New(visualizer.FrameInterval),
		logViewer:  NewLogViewer(),
	}
	a.window = a.app.NewWindow(fmt.Sprintf("AccentCoach v%s - English Pronunciation Coach", internal.Version))

	// Mirror log output into the window
	logging.Init(config.LogLevel, config.LogPretty, a.logViewer)

	a.ctrl = session.New(config.Client, a.recorder, config.Player, &dialogNotifier{window: a.window}, session.Options{
		Debounce: config.Debounce,
		Settings: config.Settings,
		Metrics:  config.Metrics,
	})

	a.setupUI()
	a.unsubscribe = a.ctrl.Subscribe(a.onStateChange)
	a.apply(a.ctrl.Snapshot())

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window.Resize(fyne.NewSize(900, 720))

	// Input section
	a.textEntry = NewPracticeEntry()
	a.textEntry.SetPlaceHolder("Paste or type English text to practice...")
	a.textEntry.SetMinRowsVisible(3)
	a.textEntry.OnChanged = a.ctrl.SetText
	a.textEntry.SetOnEscape(func() { a.window.Canvas().Unfocus() })
	a.textEntry.SetOnSubmit(a.onAnalyze)

	a.analyzeButton = ttwidget.NewButtonWithIcon("Analyze", theme.SearchIcon(), a.onAnalyze)
	inputSection := container.NewBorder(nil, nil, nil, a.analyzeButton, a.textEntry)

	// Voice settings
	settings := a.config.Settings
	if settings == (voice.Settings{}) {
		settings = voice.DefaultSettings()
	}
	a.accentSelect = widget.NewSelect(accentOptions(), func(string) { a.onSettingsChanged() })
	a.accentSelect.SetSelected(settings.Accent.Label())
	a.toneSelect = widget.NewSelect(toneOptions(), func(string) { a.onSettingsChanged() })
	a.toneSelect.SetSelected(string(settings.Tone))
	a.speedSelect = widget.NewSelect(speedOptions(), func(string) { a.onSettingsChanged() })
	a.speedSelect.SetSelected(speedOption(settings.Speed))

	settingsSection := container.NewHBox(
		widget.NewLabel("Accent:"), a.accentSelect,
		widget.NewLabel("Tone:"), a.toneSelect,
		widget.NewLabel("Speed:"), a.speedSelect,
	)

	// Action buttons
	a.listenButton = ttwidget.NewButtonWithIcon("Listen", theme.MediaPlayIcon(), a.onListen)
	a.recordButton = ttwidget.NewButtonWithIcon("Record", theme.MediaRecordIcon(), a.onRecord)
	a.recordButton.Importance = widget.HighImportance
	toolbar := container.NewHBox(a.listenButton, a.recordButton, widget.NewSeparator(), settingsSection)

	// Phonetic display
	a.phoneticDisplay = widget.NewLabel(phoneticPlaceholder)
	a.phoneticDisplay.Wrapping = fyne.TextWrapWord
	phoneticScroll := container.NewScroll(a.phoneticDisplay)
	phoneticScroll.SetMinSize(fyne.NewSize(0, 120))
	phoneticContainer := container.NewBorder(
		widget.NewLabel("Phonetic breakdown:"),
		widget.NewLabel(phonetic.Legend),
		nil, nil,
		phoneticScroll,
	)

	a.spectrum = NewSpectrumDisplay()
	a.evaluationPanel = NewEvaluationPanel()

	practiceSection := container.NewVSplit(
		phoneticContainer,
		container.NewBorder(a.spectrum, nil, nil, nil, a.evaluationPanel),
	)
	practiceSection.SetOffset(0.4)

	a.statusLabel = widget.NewLabel("Ready")
	a.statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewBorder(
		container.NewVBox(inputSection, toolbar, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), a.statusLabel, a.logViewer),
		nil, nil,
		practiceSection,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()

	a.window.SetOnClosed(a.shutdown)
	a.setupKeyboardShortcuts()
}

// setupTooltips sets tooltips once the tooltip layer exists
func (a *Application) setupTooltips() {
	a.analyzeButton.SetToolTip("Analyze now (Ctrl+Enter)")
	a.listenButton.SetToolTip("Play the model pronunciation (l)")
	a.recordButton.SetToolTip("Record yourself, click again to stop (r)")
}

// setupKeyboardShortcuts binds single keys while the text entry is unfocused
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.window.Canvas().Focused() == a.textEntry {
			return
		}
		switch r {
		case 'e', 'E':
			a.window.Canvas().Focus(a.textEntry)
		case 'a', 'A':
			if !a.analyzeButton.Disabled() {
				a.onAnalyze()
			}
		case 'l', 'L':
			if !a.listenButton.Disabled() {
				a.onListen()
			}
		case 'r', 'R':
			if !a.recordButton.Disabled() {
				a.onRecord()
			}
		}
	})
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

func (a *Application) shutdown() {
	a.unsubscribe()
	a.visualizer.Stop()
	a.ctrl.Close()
	a.cancel()
	a.wg.Wait()
	if p, ok := a.config.Player.(interface{ Wait() }); ok {
		p.Wait()
	}
}

// background runs fn off the UI thread, tracked for shutdown
func (a *Application) background(name string, fn func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := fn(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Str("action", name).Msg("action not completed")
		}
	}()
}

// onAnalyze transcribes the current text right away
func (a *Application) onAnalyze() {
	text := a.textEntry.Text
	a.background("analyze", func(ctx context.Context) error {
		err := a.ctrl.RequestTranscription(ctx, text)
		if errors.Is(err, session.ErrSuperseded) {
			return nil
		}
		return err
	})
}

func (a *Application) onListen() {
	a.background("listen", a.ctrl.Play)
}

// onRecord starts a take, or stops and evaluates the running one
func (a *Application) onRecord() {
	if a.ctrl.Snapshot().Recording {
		a.background("evaluate", a.ctrl.EndRecording)
		return
	}
	a.background("record", a.ctrl.BeginRecording)
}

func (a *Application) onSettingsChanged() {
	// Selects fire during setup before the controller is wired
	if a.accentSelect == nil || a.toneSelect == nil || a.speedSelect == nil {
		return
	}
	settings, err := selectedSettings(a.accentSelect.Selected, a.toneSelect.Selected, a.speedSelect.Selected)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring incomplete voice selection")
		return
	}
	if err := a.ctrl.SetSettings(settings); err != nil {
		log.Warn().Err(err).Msg("invalid voice settings")
	}
}

// onStateChange runs on controller goroutines
func (a *Application) onStateChange(s session.State) {
	if s.Recording {
		err := a.visualizer.Start(a.recorder, func(bins []byte) {
			levels := visualizer.Bars(bins, spectrumBars)
			fyne.Do(func() { a.spectrum.SetLevels(levels) })
		})
		if err != nil {
			log.Warn().Err(err).Msg("spectrum unavailable")
		}
	} else if a.visualizer.Running() {
		a.visualizer.Stop()
		fyne.Do(a.spectrum.Clear)
	}

	fyne.Do(func() { a.apply(s) })
}

// apply redraws the window from a snapshot. Must run on the fyne thread.
func (a *Application) apply(s session.State) {
	v := render(s)

	a.analyzeButton.SetText(v.AnalyzeLabel)
	setEnabled(a.analyzeButton, v.AnalyzeEnabled)
	a.listenButton.SetText(v.ListenLabel)
	setEnabled(a.listenButton, v.ListenEnabled)
	a.recordButton.SetText(v.RecordLabel)
	setEnabled(a.recordButton, v.RecordEnabled)
	if s.Recording {
		a.recordButton.SetIcon(theme.MediaStopIcon())
	} else {
		a.recordButton.SetIcon(theme.MediaRecordIcon())
	}

	a.phoneticDisplay.SetText(v.Phonetics)
	a.statusLabel.SetText(v.Status)
	a.evaluationPanel.SetResult(s.Evaluation)
}

func setEnabled(b *ttwidget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func accentOptions() []string {
	out := make([]string, len(voice.Accents))
	for i, a := range voice.Accents {
		out[i] = a.Label()
	}
	return out
}

func toneOptions() []string {
	out := make([]string, len(voice.Tones))
	for i, t := range voice.Tones {
		out[i] = string(t)
	}
	return out
}

func speedOptions() []string {
	out := make([]string, len(voice.Speeds))
	for i, s := range voice.Speeds {
		out[i] = speedOption(s)
	}
	return out
}

func speedOption(s voice.Speed) string {
	return strconv.Itoa(int(s)) + "%"
}

// selectedSettings parses the three select values
func selectedSettings(accent, tone, speed string) (voice.Settings, error) {
	var s voice.Settings
	var err error
	if s.Accent, err = voice.ParseAccent(accent); err != nil {
		return s, err
	}
	if s.Tone, err = voice.ParseTone(tone); err != nil {
		return s, err
	}
	if s.Speed, err = voice.ParseSpeed(strings.TrimSpace(speed)); err != nil {
		return s, err
	}
	return s, nil
}
