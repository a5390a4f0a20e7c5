package tray

import (
	"fmt"

	"focusguard/internal/core/notify"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow func()
	OnStop func()
	OnQuit func()
}

// Icons are swapped as the session moves between states.
type Icons struct {
	Idle   fyne.Resource
	Active fyne.Resource
	Break  fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	menu       *fyne.Menu
	statusItem *fyne.MenuItem
	stopItem   *fyne.MenuItem
	callbacks  Callbacks
	icons      Icons
	active     bool
	phase      string
	status     string
}

// New creates a tray manager. A nil app builds the menu without installing it.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		icons:     icons,
		status:    "idle",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	show := fyne.NewMenuItem("Show FocusGuard", func() {
		if manager.callbacks.OnShow != nil {
			manager.callbacks.OnShow()
		}
	})

	manager.stopItem = fyne.NewMenuItem("Stop session", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	manager.menu = fyne.NewMenu("FocusGuard", manager.statusItem, show, fyne.NewMenuItemSeparator(), manager.stopItem, quit)
	manager.refresh()
	return manager
}

// Apply updates the tray from a session event. Must run on the UI goroutine.
func (manager *Manager) Apply(event notify.Event) {
	switch event.Type {
	case notify.EventSessionStarted:
		manager.active = true
		manager.phase = notify.PhaseFocus
		manager.status = "focus"
	case notify.EventSessionStopped:
		manager.active = false
		manager.phase = notify.PhaseStopped
		manager.status = "idle"
	case notify.EventPhaseChanged:
		manager.phase = event.Phase
		manager.status = event.Phase
	case notify.EventTimerTick:
		if !manager.active {
			return
		}
		manager.status = fmt.Sprintf("%s %02d:%02d", event.Phase, event.Minutes, event.Seconds)
	default:
		return
	}
	manager.refresh()
}

// Status returns the current status line.
func (manager *Manager) Status() string {
	return manager.statusItem.Label
}

// Active reports whether the tray shows a running session.
func (manager *Manager) Active() bool {
	return manager.active
}

// Menu returns the tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) refresh() {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.status)
	manager.stopItem.Disabled = !manager.active
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(manager.menu)
	if icon := manager.icon(); icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) icon() fyne.Resource {
	switch {
	case !manager.active:
		return manager.icons.Idle
	case manager.phase == notify.PhaseBreak:
		return manager.icons.Break
	default:
		return manager.icons.Active
	}
}
