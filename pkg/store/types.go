package store

import (
	"encoding/json"
	"time"
)

// EventType represents the kind of session event.
type EventType string

const (
	EventTypeNodeAdded     EventType = "node_added"
	EventTypeEdgeAdded     EventType = "edge_added"
	EventTypeStartChosen   EventType = "start_chosen"
	EventTypeStepCommitted EventType = "step_committed"
	EventTypeRunPaused     EventType = "run_paused"
	EventTypeRunResumed    EventType = "run_resumed"
	EventTypeRunReset      EventType = "run_reset"
	EventTypeNarrationSet  EventType = "narration_set"
)

// EventID is a unique identifier for an event.
type EventID string

// Event is the append-only record of one session mutation. Replaying
// a session's events through the engine rebuilds its exact state.
type Event struct {
	EventID   EventID         `json:"event_id"`
	EventType EventType       `json:"event_type"`
	SessionID string          `json:"session_id"`
	Version   uint64          `json:"version"`
	TsEvent   time.Time       `json:"ts_event"`
	TsIngest  time.Time       `json:"ts_ingest"`
	Payload   json.RawMessage `json:"payload"`
}

// Payload shapes stored in Event.Payload, by event type.

// NodeAddedPayload records a node placement.
type NodeAddedPayload struct {
	NodeID string `json:"node_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// EdgeAddedPayload records an edge creation.
type EdgeAddedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// StartChosenPayload records the traversal seed.
type StartChosenPayload struct {
	NodeID string `json:"node_id"`
}

// StepCommittedPayload records the outcome of one expansion.
type StepCommittedPayload struct {
	Expanded string   `json:"expanded"`
	Visited  []string `json:"visited"`
	Frontier []string `json:"frontier"`
}

// NarrationSetPayload records displayed narration text.
type NarrationSetPayload struct {
	Text string `json:"text"`
}
