// Package tray provides the system tray control surface: a Start/Stop
// toggle, the live status line and the last saved photo.
package tray

import (
	"path/filepath"
	"sync"

	"github.com/getlantern/systray"
)

// maxStatusRunes keeps long status lines from stretching the menu.
const maxStatusRunes = 48

// Tray represents the system tray application.
type Tray struct {
	onToggle     func()
	onOpenViewer func()
	onQuit       func()

	mu        sync.RWMutex
	running   bool
	status    string
	lastPhoto string

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuStatus    *systray.MenuItem
	menuLastPhoto *systray.MenuItem
}

// New creates a new Tray showing the stopped state.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback run when Start/Stop is clicked.
func (t *Tray) OnToggle(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenViewer sets the callback run when the viewer menu item is clicked.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("handsnap")
	systray.SetTooltip("handsnap: two-finger photo capture")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Start or stop the camera")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(statusTitle(t.status), "Current status")
	t.menuStatus.Disable()
	t.menuLastPhoto = systray.AddMenuItem(lastPhotoTitle(t.lastPhoto), "Last saved photo")
	t.menuLastPhoto.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the live preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handsnap")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.call(func(t *Tray) func() { return t.onToggle })
			case <-menuViewer.ClickedCh:
				t.call(func(t *Tray) func() { return t.onOpenViewer })
			case <-menuQuit.ClickedCh:
				t.call(func(t *Tray) func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs the selected callback outside the lock to prevent deadlocks.
func (t *Tray) call(pick func(*Tray) func()) {
	t.mu.RLock()
	callback := pick(t)
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetRunning updates the Start/Stop toggle.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
}

// SetStatus updates the status line.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if status == t.status {
		return
	}
	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusTitle(status))
	}
}

// SetLastPhoto updates the last photo line.
func (t *Tray) SetLastPhoto(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastPhoto = path
	if t.menuLastPhoto != nil {
		t.menuLastPhoto.SetTitle(lastPhotoTitle(path))
	}
}

// IsRunning returns the state the toggle currently shows.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Status returns the status line text.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func toggleTitle(running bool) string {
	if running {
		return "Stop"
	}
	return "Start"
}

func statusTitle(status string) string {
	if status == "" {
		return "Status: idle"
	}
	r := []rune(status)
	if len(r) > maxStatusRunes {
		return string(r[:maxStatusRunes-3]) + "..."
	}
	return status
}

func lastPhotoTitle(path string) string {
	if path == "" {
		return "Last photo: none"
	}
	return "Last photo: " + filepath.Base(path)
}
