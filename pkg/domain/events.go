package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeDrop    EventType = "node_drop"
	EventFieldChange EventType = "field_change"
	EventConnect     EventType = "connect"
	EventSubmit      EventType = "submit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// NodeEvent reports a node created from a palette drop.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

// FieldEvent reports a field edit and whether the store accepted it.
type FieldEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
	Field    string `json:"field"`
	Value    any    `json:"value,omitempty"`
	Err      error  `json:"-"`
}

// EdgeEvent reports a connect attempt.
type EdgeEvent struct {
	EventBase
	Connection Connection `json:"connection"`
	EdgeID     string     `json:"edge_id,omitempty"`
	Err        error      `json:"-"`
}

// Submission outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// SubmitEvent reports a finished submission.
type SubmitEvent struct {
	EventBase
	RequestID string        `json:"request_id,omitempty"`
	Outcome   string        `json:"outcome"`
	Duration  time.Duration `json:"duration"`
	NumNodes  int           `json:"num_nodes"`
	NumEdges  int           `json:"num_edges"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for editor observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnNodeDrop    func(context.Context, *NodeEvent)
	OnFieldChange func(context.Context, *FieldEvent)
	OnConnect     func(context.Context, *EdgeEvent)
	OnSubmit      func(context.Context, *SubmitEvent)
}

// ChainHooks returns hooks that call each set in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeDrop: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeDrop != nil {
					h.OnNodeDrop(ctx, e)
				}
			}
		},
		OnFieldChange: func(ctx context.Context, e *FieldEvent) {
			for _, h := range hooks {
				if h.OnFieldChange != nil {
					h.OnFieldChange(ctx, e)
				}
			}
		},
		OnConnect: func(ctx context.Context, e *EdgeEvent) {
			for _, h := range hooks {
				if h.OnConnect != nil {
					h.OnConnect(ctx, e)
				}
			}
		},
		OnSubmit: func(ctx context.Context, e *SubmitEvent) {
			for _, h := range hooks {
				if h.OnSubmit != nil {
					h.OnSubmit(ctx, e)
				}
			}
		},
	}
}
