package nodetype

import (
	"strings"

	"github.com/sohail300/pipeline/pkg/domain"
)

// FieldType selects the control a field renders as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value" yaml:"value" validate:"required"`
	Label string `json:"label" yaml:"label"`
}

// IDDefault derives a field default from the node id by replacing the first
// occurrence of Replace with With, e.g. "customInput-3" -> "input_3".
type IDDefault struct {
	Replace string `json:"replace" yaml:"replace" validate:"required"`
	With    string `json:"with" yaml:"with"`
}

// Field describes one input control of a node.
// Name is the data-bag key and must be unique within a Config.
type Field struct {
	Name          string     `json:"name" yaml:"name" validate:"required"`
	Label         string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type          FieldType  `json:"type" yaml:"type" validate:"required"`
	Default       any        `json:"defaultValue,omitempty" yaml:"default,omitempty"`
	DefaultFromID *IDDefault `json:"defaultFromId,omitempty" yaml:"default_from_id,omitempty" validate:"omitempty"`
	Placeholder   string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options       []Option   `json:"options,omitempty" yaml:"options,omitempty" validate:"dive"`
	Min           *float64   `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64   `json:"max,omitempty" yaml:"max,omitempty"`
	Step          *float64   `json:"step,omitempty" yaml:"step,omitempty" validate:"omitempty,gt=0"`
	Rows          int        `json:"rows,omitempty" yaml:"rows,omitempty" validate:"gte=0"`
}

// Handle describes a connection point. Top is a fraction of the node height
// (0 < Top < 1); zero means "evenly spaced with its siblings".
type Handle struct {
	ID    string            `json:"id" yaml:"id" validate:"required"`
	Kind  domain.HandleKind `json:"type" yaml:"kind" validate:"required,oneof=target source"`
	Label string            `json:"label,omitempty" yaml:"label,omitempty"`
	Top   float64           `json:"top,omitempty" yaml:"top,omitempty" validate:"gte=0,lt=1"`
}

// GlobalID returns the identity of the handle on a given node: "{nodeID}-{handleID}".
func (h Handle) GlobalID(nodeID string) string {
	return nodeID + "-" + h.ID
}

func (f Field) forNode(nodeID string) Field {
	if f.DefaultFromID != nil {
		f.Default = strings.Replace(nodeID, f.DefaultFromID.Replace, f.DefaultFromID.With, 1)
	}
	if f.Options != nil {
		f.Options = append([]Option(nil), f.Options...)
	}
	return f
}

func ptr(v float64) *float64 { return &v }
