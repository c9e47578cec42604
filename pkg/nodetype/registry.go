package nodetype

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateType is returned when registering a node type key twice.
var ErrDuplicateType = errors.New("node type already registered")

// defaultMinimapColor is used for node types without a border color.
const defaultMinimapColor = "#6b7280"

// Entry binds a node type key to its configuration and palette metadata.
type Entry struct {
	Type   string `json:"type" yaml:"type" validate:"required"`
	Label  string `json:"label" yaml:"label"`
	Config Config `json:"config" yaml:"config"`
	// Template marks node types rendered by the template renderer,
	// whose input handles come from the text instead of Config.Handles.
	Template bool `json:"template,omitempty" yaml:"template,omitempty"`
}

// PaletteItem is what the toolbar shows for a draggable node type.
type PaletteItem struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	IconColor string `json:"iconColor"`
}

// Registry maps node type keys to configurations. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a node type. Registration order is palette order.
func (r *Registry) Register(e Entry) error {
	if e.Type == "" {
		return fmt.Errorf("register node type: empty type key")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, e.Type)
	}
	if e.Label == "" {
		e.Label = e.Config.Title
	}
	r.entries[e.Type] = e
	r.order = append(r.order, e.Type)
	return nil
}

// Lookup returns the configuration for nodeType resolved for a node id.
func (r *Registry) Lookup(nodeType, nodeID string) (Config, bool) {
	e, ok := r.Entry(nodeType)
	if !ok {
		return Config{}, false
	}
	return e.Config.ForNode(nodeID), true
}

// Entry returns the raw registration for nodeType.
func (r *Registry) Entry(nodeType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[nodeType]
	return e, ok
}

// IsTemplate reports whether nodeType uses the template renderer.
func (r *Registry) IsTemplate(nodeType string) bool {
	e, ok := r.Entry(nodeType)
	return ok && e.Template
}

// Types returns the registered keys in palette order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Entries returns all registrations in palette order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.entries[t])
	}
	return out
}

// Palette returns the toolbar items in palette order.
func (r *Registry) Palette() []PaletteItem {
	entries := r.Entries()
	out := make([]PaletteItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, PaletteItem{
			Type:      e.Type,
			Label:     e.Label,
			Icon:      e.Config.Icon,
			IconColor: e.Config.AccentColor(),
		})
	}
	return out
}

// MinimapColor returns the color used for nodeType on the canvas minimap.
func (r *Registry) MinimapColor(nodeType string) string {
	e, ok := r.Entry(nodeType)
	if !ok || e.Config.Style.BorderColor == "" {
		return defaultMinimapColor
	}
	return e.Config.Style.BorderColor
}
