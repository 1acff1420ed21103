// Package tray provides the system tray menu for AirRunner.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onStartStop func(running bool)
	onCalibrate func()
	onDashboard func()
	onQuit      func()
	running     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuStartStop  *systray.MenuItem
	menuCalibrate  *systray.MenuItem
	menuLastAction *systray.MenuItem
}

// New creates a new Tray instance with no session running.
func New() *Tray {
	return &Tray{}
}

// OnStartStop sets the callback invoked when the start/stop item is clicked.
// It receives whether a session was running before the click.
func (t *Tray) OnStartStop(fn func(running bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStartStop = fn
}

// OnCalibrate sets the callback invoked when the calibrate item is clicked.
func (t *Tray) OnCalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalibrate = fn
}

// OnDashboard sets the callback invoked when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback invoked when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main thread.
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
	systray.SetTitle("AirRunner")
	systray.SetTooltip("AirRunner motion controls")

	t.mu.Lock()
	t.menuStartStop = systray.AddMenuItem(startStopTitle(t.running), "Start or stop a game session")
	t.menuCalibrate = systray.AddMenuItem("Calibrate", "Record your movement range")
	systray.AddSeparator()
	t.menuLastAction = systray.AddMenuItem(lastActionTitle(""), "Last action sent to the game")
	t.menuLastAction.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit AirRunner")

	go func() {
		for {
			select {
			case <-t.menuStartStop.ClickedCh:
				t.handleStartStop()
			case <-t.menuCalibrate.ClickedCh:
				t.handle(func() func() { return t.onCalibrate })
			case <-menuDashboard.ClickedCh:
				t.handle(func() func() { return t.onDashboard })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleStartStop handles the start/stop menu item click.
func (t *Tray) handleStartStop() {
	t.mu.RLock()
	running := t.running
	callback := t.onStartStop
	t.mu.RUnlock()

	// The menu title follows the next SetState call, not the click.
	if callback != nil {
		callback(running)
	}
}

// handle runs the callback returned by get outside the lock.
func (t *Tray) handle(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.handle(func() func() { return t.onQuit })
	systray.Quit()
}

// SetState updates the menu for the current activity.
func (t *Tray) SetState(running, calibrating bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = running
	if t.menuStartStop != nil {
		t.menuStartStop.SetTitle(startStopTitle(running))
		if calibrating {
			t.menuStartStop.Disable()
		} else {
			t.menuStartStop.Enable()
		}
	}
	if t.menuCalibrate != nil {
		if running || calibrating {
			t.menuCalibrate.Disable()
		} else {
			t.menuCalibrate.Enable()
		}
	}
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastAction != nil {
		t.menuLastAction.SetTitle(lastActionTitle(name))
	}
}

// IsRunning reports whether a game session was running at the last SetState.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func startStopTitle(running bool) string {
	if running {
		return "■ Stop Session"
	}
	return "▶ Start Session"
}

func lastActionTitle(name string) string {
	if name == "" || name == "NEUTRAL" {
		return "Last: none"
	}
	return "Last: " + name
}
