package model

import "strings"

// AppMapping is an insertion-ordered map from display name to process name.
// It is not safe for concurrent use; the session controller owns it.
type AppMapping struct {
	order     []string
	processes map[string]string
}

// NewAppMapping creates an empty mapping.
func NewAppMapping() *AppMapping {
	return &AppMapping{processes: make(map[string]string)}
}

// Set inserts or overwrites an entry. Overwriting keeps the original position.
func (mapping *AppMapping) Set(displayName, processName string) {
	if _, exists := mapping.processes[displayName]; !exists {
		mapping.order = append(mapping.order, displayName)
	}
	mapping.processes[displayName] = processName
}

// Process returns the process name mapped to displayName.
func (mapping *AppMapping) Process(displayName string) (string, bool) {
	processName, ok := mapping.processes[displayName]
	return processName, ok
}

// DisplayNames returns display names in insertion order.
func (mapping *AppMapping) DisplayNames() []string {
	return append([]string(nil), mapping.order...)
}

// Len returns the number of entries.
func (mapping *AppMapping) Len() int {
	return len(mapping.order)
}

// Each visits entries in insertion order.
func (mapping *AppMapping) Each(visit func(displayName, processName string)) {
	for _, displayName := range mapping.order {
		visit(displayName, mapping.processes[displayName])
	}
}

// Clone returns an independent copy.
func (mapping *AppMapping) Clone() *AppMapping {
	clone := NewAppMapping()
	mapping.Each(clone.Set)
	return clone
}

// Resolve splits the mapping into allowed and blocked process names.
// Allowed names absent from the mapping are returned as unknown.
func (mapping *AppMapping) Resolve(allowedDisplayNames []string) (DerivedLists, []string) {
	allowed := make(map[string]struct{}, len(allowedDisplayNames))
	var lists DerivedLists
	var unknown []string

	for _, displayName := range allowedDisplayNames {
		if _, seen := allowed[displayName]; seen {
			continue
		}
		allowed[displayName] = struct{}{}
		processName, ok := mapping.processes[displayName]
		if !ok {
			unknown = append(unknown, displayName)
			continue
		}
		lists.AllowedProcesses = append(lists.AllowedProcesses, processName)
	}

	mapping.Each(func(displayName, processName string) {
		if _, ok := allowed[displayName]; !ok {
			lists.BlockList = append(lists.BlockList, processName)
		}
	})
	return lists, unknown
}

// NormalizeProcessName lowercases and trims a process name for comparison.
func NormalizeProcessName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
