package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// PracticeEntry is the multi-line text input. Escape leaves the field and
// Ctrl+Enter analyzes the text right away.
type PracticeEntry struct {
	widget.Entry
	onEscape func()
	onSubmit func()
}

// NewPracticeEntry creates a new practice text entry
func NewPracticeEntry() *PracticeEntry {
	entry := &PracticeEntry{}
	entry.MultiLine = true
	entry.Wrapping = fyne.TextWrapWord
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *PracticeEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// TypedShortcut handles Ctrl+Enter and passes everything else on
func (e *PracticeEntry) TypedShortcut(s fyne.Shortcut) {
	if cs, ok := s.(*desktop.CustomShortcut); ok && e.onSubmit != nil &&
		cs.Modifier == fyne.KeyModifierControl &&
		(cs.KeyName == fyne.KeyReturn || cs.KeyName == fyne.KeyEnter) {
		e.onSubmit()
		return
	}
	e.Entry.TypedShortcut(s)
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *PracticeEntry) SetOnEscape(f func()) {
	e.onEscape = f
}

// SetOnSubmit sets the callback for Ctrl+Enter
func (e *PracticeEntry) SetOnSubmit(f func()) {
	e.onSubmit = f
}
