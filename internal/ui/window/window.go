package window

import (
	"fmt"
	"runtime"
	"strconv"

	"focusguard/internal/core/notify"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Callbacks connects the window to the session controller.
type Callbacks struct {
	OnStart  func(Selection)
	OnStop   func()
	OnAddApp func(displayName, processName string) bool
}

// Window is the main FocusGuard window.
type Window struct {
	window      fyne.Window
	callbacks   Callbacks
	defaults    Selection
	apps        *widget.CheckGroup
	focus       *widget.SelectEntry
	breakEntry  *widget.SelectEntry
	startButton *widget.Button
	stopButton  *widget.Button
	addButton   *widget.Button
	countdown   *widget.Label
	phase       *widget.Label
	status      *widget.Label
	blockedList *widget.List
	blocked     []string
	running     bool
}

// New creates the main window listing apps in mapping order.
func New(app fyne.App, apps []string, defaults Selection, callbacks Callbacks) *Window {
	window := app.NewWindow("FocusGuard")

	view := &Window{
		window:    window,
		callbacks: callbacks,
		defaults:  defaults,
	}

	view.apps = widget.NewCheckGroup(append([]string(nil), apps...), nil)
	view.apps.SetSelected(defaults.Allowed)

	view.focus = widget.NewSelectEntry(presetOptions(FocusPresets))
	view.focus.SetText(strconv.Itoa(defaults.FocusMinutes))
	view.breakEntry = widget.NewSelectEntry(presetOptions(BreakPresets))
	view.breakEntry.SetText(strconv.Itoa(defaults.BreakMinutes))

	view.startButton = widget.NewButtonWithIcon("Start session", theme.MediaPlayIcon(), view.handleStart)
	view.startButton.Importance = widget.HighImportance
	view.stopButton = widget.NewButtonWithIcon("Stop session", theme.MediaStopIcon(), view.handleStop)
	view.stopButton.Disable()
	view.addButton = widget.NewButtonWithIcon("Add custom app", theme.ContentAddIcon(), view.showAddDialog)

	view.countdown = widget.NewLabelWithStyle(FormatCountdown(defaults.FocusMinutes, 0), fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	view.phase = widget.NewLabelWithStyle(phaseTitle(notify.PhaseStopped), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	view.status = widget.NewLabel("Select the apps you need, then start a session.")
	view.status.Wrapping = fyne.TextWrapWord

	view.blockedList = widget.NewList(
		func() int { return len(view.blocked) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(view.blocked[id])
		},
	)

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Focus minutes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		view.focus,
		widget.NewLabelWithStyle("Break minutes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		view.breakEntry,
		layout.NewSpacer(),
		view.countdown,
		view.phase,
		view.startButton,
		view.stopButton,
	)

	appsPanel := container.NewBorder(
		widget.NewLabelWithStyle("Allowed apps", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		view.addButton, nil, nil,
		container.NewVScroll(view.apps),
	)
	blockedPanel := container.NewBorder(
		widget.NewLabelWithStyle("Blocked", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		view.blockedList,
	)

	body := container.NewVSplit(appsPanel, blockedPanel)
	body.SetOffset(0.65)

	content := container.NewBorder(nil, view.status, sidebar, nil, body)
	window.SetContent(content)
	window.Resize(fyne.NewSize(720, 520))

	return view
}

// Show displays the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// SetCloseIntercept replaces the default close behaviour.
func (view *Window) SetCloseIntercept(intercept func()) {
	view.window.SetCloseIntercept(intercept)
}

// Hide hides the window.
func (view *Window) Hide() {
	view.window.Hide()
}

// SetApps replaces the app list, keeping selections that still exist.
func (view *Window) SetApps(apps []string) {
	available := make(map[string]bool, len(apps))
	for _, name := range apps {
		available[name] = true
	}
	kept := make([]string, 0, len(view.apps.Selected))
	for _, name := range view.apps.Selected {
		if available[name] {
			kept = append(kept, name)
		}
	}
	view.apps.Options = append([]string(nil), apps...)
	view.apps.SetSelected(kept)
	view.apps.Refresh()
}

// Selection returns the current form values. Unparseable minutes are zero.
func (view *Window) Selection() Selection {
	focus, _ := parsePositiveInt(view.focus.Text)
	breakMinutes, _ := parsePositiveInt(view.breakEntry.Text)
	return Selection{
		Allowed:      append([]string(nil), view.apps.Selected...),
		FocusMinutes: focus,
		BreakMinutes: breakMinutes,
	}
}

// Apply renders a session event. Must run on the UI goroutine.
func (view *Window) Apply(event notify.Event) {
	switch event.Type {
	case notify.EventSessionStarted:
		view.blocked = nil
		view.blockedList.Refresh()
		view.phase.SetText(phaseTitle(notify.PhaseFocus))
		view.status.SetText(event.Message)
		view.setRunning(true)
	case notify.EventSessionStopped:
		view.phase.SetText(phaseTitle(notify.PhaseStopped))
		focus, ok := parsePositiveInt(view.focus.Text)
		if !ok {
			focus = view.defaults.FocusMinutes
		}
		view.countdown.SetText(FormatCountdown(focus, 0))
		view.status.SetText(event.Message)
		view.setRunning(false)
	case notify.EventTimerTick:
		view.countdown.SetText(FormatCountdown(event.Minutes, event.Seconds))
	case notify.EventPhaseChanged:
		view.phase.SetText(phaseTitle(event.Phase))
		view.status.SetText(event.Message)
	case notify.EventAppBlocked:
		view.blocked = append(view.blocked, fmt.Sprintf("%s  %s", event.At.Format("15:04:05"), event.Process))
		view.blockedList.Refresh()
		view.blockedList.ScrollToBottom()
	case notify.EventStatusChanged:
		view.status.SetText(event.Message)
	}
}

func (view *Window) setRunning(running bool) {
	view.running = running
	if running {
		view.startButton.Disable()
		view.stopButton.Enable()
		view.apps.Disable()
		view.focus.Disable()
		view.breakEntry.Disable()
		view.addButton.Disable()
		return
	}
	view.startButton.Enable()
	view.stopButton.Disable()
	view.apps.Enable()
	view.focus.Enable()
	view.breakEntry.Enable()
	view.addButton.Enable()
}

func (view *Window) handleStart() {
	if view.callbacks.OnStart != nil {
		view.callbacks.OnStart(view.Selection())
	}
}

func (view *Window) handleStop() {
	if view.callbacks.OnStop != nil {
		view.callbacks.OnStop()
	}
}

func (view *Window) showAddDialog() {
	displayName := widget.NewEntry()
	displayName.SetPlaceHolder("Visual Studio Code")
	processName := widget.NewEntry()
	processName.SetPlaceHolder("code")

	edited := false
	processName.OnChanged = func(string) { edited = true }
	displayName.OnChanged = func(text string) {
		if edited {
			return
		}
		processName.SetText(SuggestProcessName(text, runtime.GOOS))
		// SetText fires OnChanged.
		edited = false
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Display name", displayName),
		widget.NewFormItem("Process name", processName),
	}
	dialog.ShowForm("Add application", "Add", "Cancel", items, func(confirmed bool) {
		if confirmed {
			view.addApp(displayName.Text, processName.Text)
		}
	}, view.window)
}

func (view *Window) addApp(displayName, processName string) bool {
	if view.callbacks.OnAddApp == nil {
		return false
	}
	if !view.callbacks.OnAddApp(displayName, processName) {
		view.status.SetText(fmt.Sprintf("Could not add %q", displayName))
		return false
	}
	view.status.SetText(fmt.Sprintf("Added %s", displayName))
	return true
}

// FormatCountdown renders minutes and seconds as MM:SS.
func FormatCountdown(minutes, seconds int) string {
	if minutes < 0 {
		minutes = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func phaseTitle(phase string) string {
	switch phase {
	case notify.PhaseFocus:
		return "Focus"
	case notify.PhaseBreak:
		return "Break"
	default:
		return "Not running"
	}
}
