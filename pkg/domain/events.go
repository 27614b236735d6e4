package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeAdded      EventType = "node_added"
	EventEdgeAdded      EventType = "edge_added"
	EventReferenceError EventType = "reference_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Tree      string    `json:"tree,omitempty"` // Name of the emitting tree, if any
}

// Event is implemented by every concrete event so publishers can stay generic.
type Event interface {
	Base() EventBase
}

// NodeEvent is emitted after a node is inserted.
type NodeEvent struct {
	EventBase
	Node      Node `json:"node"`
	NodeCount int  `json:"node_count"`
}

// EdgeEvent is emitted after a parent to child edge is inserted.
type EdgeEvent struct {
	EventBase
	Edge Edge `json:"edge"`
}

// ReferenceEvent is emitted when an insertion names an unregistered parent.
// Node is the node that was inserted anyway.
type ReferenceEvent struct {
	EventBase
	Node   Node `json:"node"`
	Parent int  `json:"parent"`
}

func (e *NodeEvent) Base() EventBase      { return e.EventBase }
func (e *EdgeEvent) Base() EventBase      { return e.EventBase }
func (e *ReferenceEvent) Base() EventBase { return e.EventBase }

// NewEventBase stamps a new event header.
func NewEventBase(t EventType, tree string) EventBase {
	return EventBase{
		Timestamp: time.Now(),
		Type:      t,
		Tree:      tree,
	}
}

// LifecycleHooks defines callbacks for builder observability.
// Hooks run synchronously, after the mutation they describe.
type LifecycleHooks struct {
	OnNodeAdded      func(context.Context, *NodeEvent)
	OnEdgeAdded      func(context.Context, *EdgeEvent)
	OnReferenceError func(context.Context, *ReferenceEvent)
}

// DecodeEvent decodes a JSON event produced by a publisher back into its
// concrete type, using the "type" field to pick it.
func DecodeEvent(data []byte) (Event, error) {
	var base EventBase
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	var ev Event
	switch base.Type {
	case EventNodeAdded:
		ev = &NodeEvent{}
	case EventEdgeAdded:
		ev = &EdgeEvent{}
	case EventReferenceError:
		ev = &ReferenceEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", base.Type)
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", base.Type, err)
	}
	return ev, nil
}
