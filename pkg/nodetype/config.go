package nodetype

import "github.com/sohail300/pipeline/pkg/domain"

// Style is the node body's color scheme.
type Style struct {
	BorderColor string `json:"borderColor" yaml:"border_color"`
	Background  string `json:"background" yaml:"background"`
}

// Config is the immutable description of a node kind.
// Fields render top to bottom in order; handles split into targets (left)
// and sources (right), each ordered independently.
type Config struct {
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	IconColor   string   `json:"iconColor,omitempty" yaml:"icon_color,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field  `json:"fields" yaml:"fields" validate:"dive"`
	Handles     []Handle `json:"handles" yaml:"handles" validate:"dive"`
	Style       Style    `json:"style" yaml:"style"`
}

// ForNode resolves id-derived defaults for a concrete node.
// The receiver is left untouched.
func (c Config) ForNode(nodeID string) Config {
	fields := make([]Field, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = f.forNode(nodeID)
	}
	c.Fields = fields
	c.Handles = append([]Handle(nil), c.Handles...)
	return c
}

// Field returns the descriptor with the given name.
func (c Config) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Targets returns the input handles in declaration order.
func (c Config) Targets() []Handle { return c.handlesOf(domain.HandleTarget) }

// Sources returns the output handles in declaration order.
func (c Config) Sources() []Handle { return c.handlesOf(domain.HandleSource) }

func (c Config) handlesOf(kind domain.HandleKind) []Handle {
	var out []Handle
	for _, h := range c.Handles {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}

// AccentColor is the icon color, falling back to the border color and then the default indigo.
func (c Config) AccentColor() string {
	switch {
	case c.IconColor != "":
		return c.IconColor
	case c.Style.BorderColor != "":
		return c.Style.BorderColor
	default:
		return "#6366f1"
	}
}
