package domain

import (
	"encoding/json"
	"fmt"
)

// Node type identifiers. These are the keys the canvas uses to pick a renderer.
const (
	TypeInput       = "customInput"
	TypeOutput      = "customOutput"
	TypeLLM         = "llm"
	TypeText        = "text"
	TypeTransform   = "transform"
	TypeConditional = "conditional"
	TypeAPI         = "api"
	TypeDatabase    = "database"
	TypeDelay       = "delay"
)

// Position is a point in graph coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeRecord is a node placed on the canvas.
// The ID is stable for the node's lifetime.
type NodeRecord struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`

	// UI state reported by the canvas. Never sent to the validator.
	Selected bool    `json:"selected,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

// UnmarshalJSON decodes the data bag into the variant matching the node type.
func (n *NodeRecord) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID       string         `json:"id"`
		Type     string         `json:"type"`
		Position Position       `json:"position"`
		Data     map[string]any `json:"data"`
		Selected bool           `json:"selected"`
		Width    float64        `json:"width"`
		Height   float64        `json:"height"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	data, err := DecodeData(aux.Type, aux.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", aux.ID, err)
	}

	*n = NodeRecord{
		ID:       aux.ID,
		Type:     aux.Type,
		Position: aux.Position,
		Data:     data,
		Selected: aux.Selected,
		Width:    aux.Width,
		Height:   aux.Height,
	}
	return nil
}

// Clone returns a deep copy of the record.
func (n NodeRecord) Clone() NodeRecord {
	if n.Data != nil {
		n.Data = CloneData(n.Data)
	}
	return n
}

// HandleKind tells whether a handle accepts incoming edges (target) or emits them (source).
type HandleKind string

const (
	HandleTarget HandleKind = "target"
	HandleSource HandleKind = "source"
)

// EdgeRecord is a directed connection from a source handle to a target handle.
type EdgeRecord struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`

	// Presentation hints applied on connect.
	Type     string `json:"type,omitempty"`
	Animated bool   `json:"animated,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Connection is the request emitted when the user drags from one handle to another.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// EdgeID returns the deterministic edge identity for a connection.
// Connecting the same pair of handles twice yields the same ID.
func (c Connection) EdgeID() string {
	return fmt.Sprintf("reactflow__edge-%s%s-%s%s", c.Source, c.SourceHandle, c.Target, c.TargetHandle)
}
