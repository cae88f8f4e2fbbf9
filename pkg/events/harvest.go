// Package events extracts plain domain values from raw platform
// events. The reconciler's listener mechanism is agnostic to this
// mapping; callers apply it in their handlers, typically right after
// decoding a client event frame.
package events

import "sync"

// RawEvent is a platform-level event payload as received from a
// client. Only the fields relevant to the event type are populated.
type RawEvent struct {
	Type string `json:"type"`

	// Keyboard events.
	Key   string `json:"key,omitempty"`
	Code  string `json:"code,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`

	// Input and change events.
	TargetType string `json:"targetType,omitempty"`
	Value      string `json:"value,omitempty"`
	Checked    bool   `json:"checked,omitempty"`

	// File-carrying events.
	Files []File `json:"files,omitempty"`

	// Anything else.
	Detail any `json:"detail,omitempty"`
}

// File describes one file-like blob attached to an event.
type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Data []byte `json:"data,omitempty"`
}

// KeyInfo is the harvested form of a keyboard event.
type KeyInfo struct {
	Key  string
	Code string
	Mods []string
}

// Harvester maps a raw event to its domain value.
type Harvester func(ev RawEvent) any

// Registry dispatches harvesting by event type with an explicit
// default branch. A fresh registry carries the built-in extractors;
// Register overrides or extends them.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Harvester
	fallback Harvester
}

func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]Harvester),
		fallback: harvestDetail,
	}
	for _, kb := range []string{"keydown", "keyup", "keypress"} {
		r.handlers[kb] = harvestKeyboard
	}
	r.handlers["input"] = harvestInput
	r.handlers["change"] = harvestInput
	r.handlers["drop"] = harvestFiles
	return r
}

// Register installs a harvester for an event type, replacing any
// existing one.
func (r *Registry) Register(eventType string, h Harvester) {
	r.mu.Lock()
	r.handlers[eventType] = h
	r.mu.Unlock()
}

// SetDefault replaces the fallback harvester.
func (r *Registry) SetDefault(h Harvester) {
	r.mu.Lock()
	r.fallback = h
	r.mu.Unlock()
}

// Harvest extracts the domain value for ev.
func (r *Registry) Harvest(ev RawEvent) any {
	r.mu.RLock()
	h, ok := r.handlers[ev.Type]
	if !ok {
		h = r.fallback
	}
	r.mu.RUnlock()
	return h(ev)
}

func harvestKeyboard(ev RawEvent) any {
	info := KeyInfo{Key: ev.Key, Code: ev.Code}
	if ev.Alt {
		info.Mods = append(info.Mods, "alt")
	}
	if ev.Ctrl {
		info.Mods = append(info.Mods, "ctrl")
	}
	if ev.Meta {
		info.Mods = append(info.Mods, "meta")
	}
	if ev.Shift {
		info.Mods = append(info.Mods, "shift")
	}
	return info
}

// harvestInput yields a checkbox boolean, a file list, or the text
// value, depending on the target control.
func harvestInput(ev RawEvent) any {
	switch ev.TargetType {
	case "checkbox", "radio":
		return ev.Checked
	case "file":
		return ev.Files
	default:
		return ev.Value
	}
}

func harvestFiles(ev RawEvent) any { return ev.Files }

func harvestDetail(ev RawEvent) any { return ev.Detail }
