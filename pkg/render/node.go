package render

import (
	"fmt"
	"sync"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
)

// FieldChangeFunc is told about every field edit, after the working copy is updated.
type FieldChangeFunc func(nodeID, field string, value any)

// Renderer is a mounted node.
type Renderer interface {
	ID() string
	Type() string
	View() NodeView
	SetField(name string, value any) error
	Value(name string) (any, bool)
}

// BaseNode renders a node from its Config. Safe for concurrent use.
type BaseNode struct {
	id       string
	nodeType string
	cfg      nodetype.Config
	onChange FieldChangeFunc

	mu     sync.RWMutex
	values map[string]any
}

// NewBaseNode mounts a node. cfg must already be resolved for id.
// Working values are seeded from data, then field defaults, then "".
// They are never re-seeded from data later.
func NewBaseNode(id string, data domain.NodeData, cfg nodetype.Config, onChange FieldChangeFunc) *BaseNode {
	n := &BaseNode{
		id:       id,
		cfg:      cfg,
		onChange: onChange,
		values:   make(map[string]any, len(cfg.Fields)),
	}
	if data != nil {
		n.nodeType = data.NodeType()
	}
	for _, f := range cfg.Fields {
		n.values[f.Name] = seed(data, f)
	}
	return n
}

func seed(data domain.NodeData, f nodetype.Field) any {
	if data != nil {
		if v, ok := data.Get(f.Name); ok && v != nil {
			return v
		}
	}
	if f.Default != nil {
		return f.Default
	}
	return ""
}

func (n *BaseNode) ID() string   { return n.id }
func (n *BaseNode) Type() string { return n.nodeType }

// SetField updates the working value and then notifies the change callback.
func (n *BaseNode) SetField(name string, value any) error {
	if _, ok := n.cfg.Field(name); !ok {
		return fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, n.id, name)
	}
	n.mu.Lock()
	n.values[name] = value
	n.mu.Unlock()

	if n.onChange != nil {
		n.onChange(n.id, name, value)
	}
	return nil
}

// Value returns the working value of a field.
func (n *BaseNode) Value(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.values[name]
	return v, ok
}

// Values returns a copy of all working values.
func (n *BaseNode) Values() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// View renders the node. Controls returned in the view write back through SetField.
func (n *BaseNode) View() NodeView {
	v := header(n.id, n.nodeType, n.cfg)
	v.MinWidth = MinNodeWidth

	for _, f := range n.cfg.Fields {
		current, _ := n.Value(f.Name)
		name := f.Name
		v.Fields = append(v.Fields, FieldView{
			Name:  f.Name,
			Label: f.Label,
			Control: RenderField(f, current, func(raw any) {
				_ = n.SetField(name, raw)
			}),
		})
	}

	v.Handles = append(placeHandles(n.id, n.cfg.Targets(), SideLeft), placeHandles(n.id, n.cfg.Sources(), SideRight)...)
	return v
}

func header(id, nodeType string, cfg nodetype.Config) NodeView {
	return NodeView{
		ID:          id,
		Type:        nodeType,
		Title:       cfg.Title,
		Icon:        cfg.Icon,
		IconColor:   cfg.AccentColor(),
		Description: cfg.Description,
		Style:       cfg.Style,
		Fields:      []FieldView{},
		Handles:     []HandleView{},
	}
}

func placeHandles(nodeID string, hs []nodetype.Handle, side Side) []HandleView {
	out := make([]HandleView, 0, len(hs))
	for i, h := range hs {
		top := h.Top
		if top == 0 {
			top = evenTop(i, len(hs))
		}
		out = append(out, HandleView{
			ID:    h.GlobalID(nodeID),
			Kind:  h.Kind,
			Side:  side,
			Label: h.Label,
			Top:   top,
		})
	}
	return out
}
