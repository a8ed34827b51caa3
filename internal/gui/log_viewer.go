package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogViewer is a widget that displays log messages. It is an io.Writer so
// it can be attached to the zerolog logger as an extra output.
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	mu          sync.Mutex
	messages    []string
	maxMessages int
	pending     bool
}

// NewLogViewer creates a new log viewer widget
func NewLogViewer() *LogViewer {
	v := &LogViewer{
		maxMessages: 500,
		messages:    make([]string, 0),
	}

	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable() // read-only
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 100))

	v.container = container.NewBorder(
		widget.NewLabel("Log messages (newest first):"),
		nil, nil, nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Write implements io.Writer. Each line becomes one message.
func (v *LogViewer) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			v.AddMessage(line)
		}
	}
	return len(p), nil
}

// AddMessage adds a message to the top of the log
func (v *LogViewer) AddMessage(message string) {
	v.mu.Lock()
	v.messages = append([]string{message}, v.messages...)
	if len(v.messages) > v.maxMessages {
		v.messages = v.messages[:v.maxMessages]
	}

	// Coalesce bursts into one redraw
	schedule := !v.pending
	v.pending = true
	v.mu.Unlock()

	if schedule {
		fyne.Do(v.redraw)
	}
}

// Messages returns a copy of the messages, newest first
func (v *LogViewer) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	v.mu.Lock()
	v.messages = v.messages[:0]
	v.mu.Unlock()

	fyne.Do(v.redraw)
}

func (v *LogViewer) redraw() {
	v.mu.Lock()
	text := strings.Join(v.messages, "\n")
	v.pending = false
	v.mu.Unlock()

	v.logEntry.SetText(text)
	v.scrollView.Offset = fyne.NewPos(0, 0)
	v.scrollView.Refresh()
}
