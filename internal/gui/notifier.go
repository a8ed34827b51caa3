package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// dialogNotifier shows controller alerts as blocking error dialogs
type dialogNotifier struct {
	window fyne.Window
}

// Alert implements session.Notifier
func (n *dialogNotifier) Alert(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), n.window)
	})
}
