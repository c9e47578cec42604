package render

import (
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
)

// MinNodeWidth is the minimum width of a generic node body, in pixels.
const MinNodeWidth = 240

// Side is the edge of the node a handle is drawn on.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// HandleView is a positioned connection point.
// ID is the identity edges refer to.
type HandleView struct {
	ID    string            `json:"id"`
	Kind  domain.HandleKind `json:"type"`
	Side  Side              `json:"side"`
	Label string            `json:"label,omitempty"`
	// Top is the vertical offset as a fraction of the node height.
	Top float64 `json:"top"`
}

// FieldView is one labeled row of the node body.
// Control is nil when the field type has no control.
type FieldView struct {
	Name    string   `json:"name"`
	Label   string   `json:"label,omitempty"`
	Control *Control `json:"control,omitempty"`
}

// NodeView is everything needed to draw one node.
type NodeView struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Icon        string         `json:"icon,omitempty"`
	IconColor   string         `json:"iconColor"`
	Description string         `json:"description,omitempty"`
	Style       nodetype.Style `json:"style"`
	MinWidth    int            `json:"minWidth"`
	MinHeight   int            `json:"minHeight,omitempty"`
	Fields      []FieldView    `json:"fields"`
	Handles     []HandleView   `json:"handles"`
	// Variables is set for template nodes only.
	Variables []string `json:"variables,omitempty"`
}

// Targets returns the left-side handles in order.
func (v NodeView) Targets() []HandleView { return v.handlesOf(domain.HandleTarget) }

// Sources returns the right-side handles in order.
func (v NodeView) Sources() []HandleView { return v.handlesOf(domain.HandleSource) }

func (v NodeView) handlesOf(kind domain.HandleKind) []HandleView {
	var out []HandleView
	for _, h := range v.Handles {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}

// evenTop spaces n handles evenly down the node: (i+1)/(n+1).
func evenTop(i, n int) float64 {
	return float64(i+1) / float64(n+1)
}
