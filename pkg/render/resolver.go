package render

import (
	"fmt"
	"slices"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/placeholder"
	"github.com/sohail300/pipeline/pkg/ports"
)

// Resolver answers handle-role questions from the registry.
// Template handles are derived from the text stored in the node's data bag.
type Resolver struct {
	reg *nodetype.Registry
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *nodetype.Registry) *Resolver {
	return &Resolver{reg: reg}
}

var _ ports.HandleResolver = (*Resolver)(nil)

// HasHandle reports whether node has handleID in the given role.
func (r *Resolver) HasHandle(node domain.NodeRecord, handleID string, kind domain.HandleKind) bool {
	e, ok := r.reg.Entry(node.Type)
	if !ok {
		return false
	}
	if e.Template {
		switch kind {
		case domain.HandleSource:
			return handleID == OutputHandle
		case domain.HandleTarget:
			return slices.Contains(placeholder.Extract(templateText(node.Data)), handleID)
		}
		return false
	}
	for _, h := range e.Config.Handles {
		if h.Kind == kind && h.GlobalID(node.ID) == handleID {
			return true
		}
	}
	return false
}

func templateText(data domain.NodeData) string {
	if data == nil {
		return DefaultText
	}
	v, ok := data.Get(TextField)
	if !ok || v == nil {
		return DefaultText
	}
	return fmt.Sprint(v)
}
