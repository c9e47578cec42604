package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MimeType is the key the drag payload travels under.
const MimeType = "application/reactflow"

// ErrNoPayload is returned when a drop carries no usable palette token.
var ErrNoPayload = errors.New("no drag payload")

// DragPayload is what a palette item carries while dragged.
type DragPayload struct {
	NodeType string `json:"nodeType"`
}

// DataTransfer is the drag-and-drop data carrier.
type DataTransfer interface {
	GetData(format string) string
}

// MapTransfer is an in-memory DataTransfer keyed by format.
type MapTransfer map[string]string

func (m MapTransfer) GetData(format string) string { return m[format] }

// SetData stores data under format.
func (m MapTransfer) SetData(format, data string) { m[format] = data }

// EncodeDragPayload returns the JSON payload for nodeType.
func EncodeDragPayload(nodeType string) string {
	b, _ := json.Marshal(DragPayload{NodeType: nodeType})
	return string(b)
}

// DecodeDragPayload parses a payload. Empty input, invalid JSON and a missing
// node type all yield ErrNoPayload.
func DecodeDragPayload(raw string) (DragPayload, error) {
	if raw == "" {
		return DragPayload{}, ErrNoPayload
	}
	var p DragPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrNoPayload, err)
	}
	if p.NodeType == "" {
		return DragPayload{}, fmt.Errorf("%w: empty node type", ErrNoPayload)
	}
	return p, nil
}

// StartDrag returns the transfer a palette item sets when a drag begins.
func StartDrag(nodeType string) MapTransfer {
	t := MapTransfer{}
	t.SetData(MimeType, EncodeDragPayload(nodeType))
	return t
}
