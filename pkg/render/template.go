package render

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/placeholder"
)

const (
	// TextField is the data-bag key holding template text.
	TextField = "text"
	// DefaultText is the text of a freshly dropped template node.
	DefaultText = "{{input}}"
	// OutputHandle is the id of the template node's single source handle.
	OutputHandle = "output"

	textPlaceholder = "Enter text with {{variables}}"
)

// TemplateNode renders the text node. Its target handles are named after the
// placeholders in its text and its only source handle is "output".
// Safe for concurrent use.
type TemplateNode struct {
	id       string
	nodeType string
	cfg      nodetype.Config
	onChange FieldChangeFunc

	mu   sync.RWMutex
	text string
	vars []string
	size placeholder.Size
}

// NewTemplateNode mounts a template node, seeding the text from data["text"]
// or DefaultText. cfg supplies the header and style.
func NewTemplateNode(id string, data domain.NodeData, cfg nodetype.Config, onChange FieldChangeFunc) *TemplateNode {
	n := &TemplateNode{
		id:       id,
		nodeType: domain.TypeText,
		cfg:      cfg,
		onChange: onChange,
	}
	text := DefaultText
	if data != nil {
		n.nodeType = data.NodeType()
		if v, ok := data.Get(TextField); ok && v != nil {
			text = fmt.Sprint(v)
		}
	}
	n.setText(text)
	return n
}

func (n *TemplateNode) ID() string   { return n.id }
func (n *TemplateNode) Type() string { return n.nodeType }

// SetText replaces the text and recomputes variables and size.
func (n *TemplateNode) SetText(text string) {
	n.setText(text)
	if n.onChange != nil {
		n.onChange(n.id, TextField, text)
	}
}

func (n *TemplateNode) setText(text string) {
	vars := placeholder.Extract(text)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
	n.vars = vars
	n.size = placeholder.Measure(text, len(vars))
}

// SetField accepts only the text field.
func (n *TemplateNode) SetField(name string, value any) error {
	if name != TextField {
		return fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, n.id, name)
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: text must be a string, got %T", domain.ErrInvalidFieldValue, value)
	}
	n.SetText(s)
	return nil
}

// Value returns the text for TextField.
func (n *TemplateNode) Value(name string) (any, bool) {
	if name != TextField {
		return nil, false
	}
	return n.Text(), true
}

// Text returns the current text.
func (n *TemplateNode) Text() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.text
}

// Variables returns the placeholder names in order of first appearance.
func (n *TemplateNode) Variables() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.vars)
}

// Size returns the auto-fit footprint for the current text.
func (n *TemplateNode) Size() placeholder.Size {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.size
}

// Handles returns one target per variable followed by the output source.
func (n *TemplateNode) Handles() []HandleView {
	return templateHandles(n.Variables())
}

func templateHandles(vars []string) []HandleView {
	out := make([]HandleView, 0, len(vars)+1)
	for i, v := range vars {
		out = append(out, HandleView{
			ID:    v,
			Kind:  domain.HandleTarget,
			Side:  SideLeft,
			Label: v,
			Top:   evenTop(i, len(vars)),
		})
	}
	return append(out, HandleView{
		ID:    OutputHandle,
		Kind:  domain.HandleSource,
		Side:  SideRight,
		Label: "Output",
		Top:   0.5,
	})
}

// View renders the node with a single textarea and the variables band.
func (n *TemplateNode) View() NodeView {
	n.mu.RLock()
	text, vars, size := n.text, slices.Clone(n.vars), n.size
	n.mu.RUnlock()

	v := header(n.id, n.nodeType, n.cfg)
	v.MinWidth = size.Width
	v.MinHeight = size.Height
	v.Variables = vars
	v.Handles = templateHandles(vars)

	label := "Text"
	if f, ok := n.cfg.Field(TextField); ok && f.Label != "" {
		label = f.Label
	}
	c := RenderField(nodetype.Field{
		Name:        TextField,
		Type:        nodetype.FieldTextarea,
		Placeholder: textPlaceholder,
		Rows:        placeholder.Rows(text),
	}, text, func(raw any) {
		n.SetText(fmt.Sprint(raw))
	})
	v.Fields = append(v.Fields, FieldView{Name: TextField, Label: label, Control: c})
	return v
}
