package window

import (
	"strconv"
	"strings"
)

// Preset minute values offered by the duration inputs.
var (
	FocusPresets = []int{15, 25, 45, 60, 90, 120}
	BreakPresets = []int{5, 10, 15, 20}
)

// Selection is what the Start button submits.
type Selection struct {
	Allowed      []string
	FocusMinutes int
	BreakMinutes int
}

// DefaultSelection returns the form state shown on a fresh window.
func DefaultSelection() Selection {
	return Selection{FocusMinutes: 25, BreakMinutes: 5}
}

// SuggestProcessName proposes a process name for a display name, adding the
// .exe suffix on windows.
func SuggestProcessName(displayName, goos string) string {
	name := strings.ToLower(strings.Join(strings.Fields(displayName), ""))
	if name == "" {
		return ""
	}
	if goos == "windows" && !strings.HasSuffix(name, ".exe") {
		name += ".exe"
	}
	return name
}

func presetOptions(values []int) []string {
	options := make([]string, len(values))
	for i, value := range values {
		options[i] = strconv.Itoa(value)
	}
	return options
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
