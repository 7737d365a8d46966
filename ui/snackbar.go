package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"keyterm-chat-client/utils"
)

// snackbarDuration is how long a notification stays visible
const snackbarDuration = 3 * time.Second

// Snackbar shows transient, non-modal notifications near the bottom of
// the window. Success and failure look the same apart from the marker;
// the user is never shown the transport/server distinction.
type Snackbar struct {
	window fyne.Window
	logger *utils.Logger

	mu      sync.Mutex
	current *widget.PopUp
}

// NewSnackbar creates a snackbar bound to the given window
func NewSnackbar(window fyne.Window, logger *utils.Logger) *Snackbar {
	return &Snackbar{
		window: window,
		logger: logger,
	}
}

// Success shows a success notification
func (s *Snackbar) Success(message string) {
	s.logger.Info("Notification: %s", message)
	s.show("✅ " + message)
}

// Error shows a failure notification
func (s *Snackbar) Error(message string) {
	s.logger.Error("Notification: %s", message)
	s.show("❌ " + message)
}

// show replaces any visible notification; callable from any goroutine
func (s *Snackbar) show(message string) {
	fyne.Do(func() {
		s.mu.Lock()
		if s.current != nil {
			s.current.Hide()
		}

		label := widget.NewLabel(message)
		popup := widget.NewPopUp(container.NewPadded(label), s.window.Canvas())
		s.current = popup
		s.mu.Unlock()

		canvasSize := s.window.Canvas().Size()
		popupSize := popup.MinSize()
		popup.ShowAtPosition(fyne.NewPos(
			(canvasSize.Width-popupSize.Width)/2,
			canvasSize.Height-popupSize.Height-24,
		))

		time.AfterFunc(snackbarDuration, func() {
			fyne.Do(func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				if s.current == popup {
					popup.Hide()
					s.current = nil
				}
			})
		})
	})
}
