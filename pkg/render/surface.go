package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
)

// ErrUnknownNodeType is returned when mounting a node whose type is not registered.
var ErrUnknownNodeType = errors.New("unknown node type")

// Surface keeps one mounted renderer per node id.
// Mounting an id that is already mounted returns the existing renderer,
// so working values survive repeated renders.
type Surface struct {
	reg      *nodetype.Registry
	onChange FieldChangeFunc

	mu      sync.Mutex
	mounted map[string]mount
}

// mount remembers the record type a renderer was created for.
type mount struct {
	renderer Renderer
	nodeType string
}

// NewSurface creates an empty surface for nodes described by reg.
func NewSurface(reg *nodetype.Registry, onChange FieldChangeFunc) *Surface {
	return &Surface{
		reg:      reg,
		onChange: onChange,
		mounted:  make(map[string]mount),
	}
}

// Mount returns the renderer for the node, creating it on first sight.
func (s *Surface) Mount(node domain.NodeRecord) (Renderer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mounted[node.ID]; ok && m.nodeType == node.Type {
		return m.renderer, nil
	}

	cfg, ok := s.reg.Lookup(node.Type, node.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, node.Type)
	}
	data := node.Data
	if data == nil {
		data = domain.NewInitialData(node.ID, node.Type)
	}

	var r Renderer
	if s.reg.IsTemplate(node.Type) {
		r = NewTemplateNode(node.ID, data, cfg, s.onChange)
	} else {
		r = NewBaseNode(node.ID, data, cfg, s.onChange)
	}
	s.mounted[node.ID] = mount{renderer: r, nodeType: node.Type}
	return r, nil
}

// Lookup returns the renderer for an already mounted node.
func (s *Surface) Lookup(id string) (Renderer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mounted[id]
	return m.renderer, ok
}

// Unmount drops the renderer for id.
func (s *Surface) Unmount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mounted, id)
}

// Sync unmounts every renderer whose node is no longer in nodes.
func (s *Surface) Sync(nodes []domain.NodeRecord) {
	keep := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		keep[n.ID] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.mounted {
		if !keep[id] {
			delete(s.mounted, id)
		}
	}
}

// Len returns the number of mounted renderers.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mounted)
}
