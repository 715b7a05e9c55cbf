package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rmax-ai/wavefront/pkg/graph"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// Recorder appends session events as the engine mutates. Recording
// failures are logged and swallowed: the event log is an observer of
// the traversal, never a gate on it.
type Recorder struct {
	store     *Store
	sessionID string
}

// NewRecorder starts a fresh session in the store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store:     store,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the session this recorder writes to.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// NodeAdded records a node placement.
func (r *Recorder) NodeAdded(ctx context.Context, version uint64, n *graph.Node) {
	r.append(ctx, EventTypeNodeAdded, version, NodeAddedPayload{NodeID: n.ID, X: n.X, Y: n.Y})
}

// EdgeAdded records an edge creation.
func (r *Recorder) EdgeAdded(ctx context.Context, version uint64, e *graph.Edge) {
	r.append(ctx, EventTypeEdgeAdded, version, EdgeAddedPayload{From: e.From, To: e.To})
}

// StartChosen records the traversal seed.
func (r *Recorder) StartChosen(ctx context.Context, version uint64, nodeID string) {
	r.append(ctx, EventTypeStartChosen, version, StartChosenPayload{NodeID: nodeID})
}

// StepCommitted records the state after one expansion.
func (r *Recorder) StepCommitted(ctx context.Context, snap traversal.Snapshot, expanded string) {
	r.append(ctx, EventTypeStepCommitted, snap.Version, StepCommittedPayload{
		Expanded: expanded,
		Visited:  snap.Visited,
		Frontier: snap.Frontier,
	})
}

// RunPaused records a pause toggle.
func (r *Recorder) RunPaused(ctx context.Context, version uint64) {
	r.append(ctx, EventTypeRunPaused, version, nil)
}

// RunResumed records a resume toggle.
func (r *Recorder) RunResumed(ctx context.Context, version uint64) {
	r.append(ctx, EventTypeRunResumed, version, nil)
}

// RunReset records a reset.
func (r *Recorder) RunReset(ctx context.Context, version uint64) {
	r.append(ctx, EventTypeRunReset, version, nil)
}

// NarrationSet records displayed narration text.
func (r *Recorder) NarrationSet(ctx context.Context, version uint64, text string) {
	r.append(ctx, EventTypeNarrationSet, version, NarrationSetPayload{Text: text})
}

func (r *Recorder) append(ctx context.Context, typ EventType, version uint64, payload any) {
	var raw json.RawMessage = []byte("{}")
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal event payload", "type", typ, "error", err)
			return
		}
		raw = data
	}

	event := &Event{
		EventID:   EventID(uuid.NewString()),
		EventType: typ,
		SessionID: r.sessionID,
		Version:   version,
		TsEvent:   time.Now().UTC(),
		Payload:   raw,
	}

	if err := r.store.AppendEvent(ctx, event); err != nil {
		slog.Error("failed to append session event", "type", typ, "error", err)
	}
}

// Replay rebuilds a Run by driving a fresh engine through a session's
// recorded events. Node IDs come out identical because creation order
// is preserved.
func Replay(ctx context.Context, s *Store, sessionID string) (*traversal.Run, error) {
	events, err := s.ReadSessionEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	run := traversal.NewRun()
	for _, e := range events {
		if err := applyEvent(run, e); err != nil {
			return nil, fmt.Errorf("replay of event %s (%s) failed: %w", e.EventID, e.EventType, err)
		}
	}
	return run, nil
}

func applyEvent(run *traversal.Run, e *Event) error {
	switch e.EventType {
	case EventTypeNodeAdded:
		var p NodeAddedPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		if _, ok := run.AddNodeAt(p.X, p.Y); !ok {
			return fmt.Errorf("node placement rejected")
		}

	case EventTypeEdgeAdded:
		var p EdgeAddedPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		if _, ok := run.Connect(p.From, p.To); !ok {
			return fmt.Errorf("edge %s-%s rejected", p.From, p.To)
		}

	case EventTypeStartChosen:
		var p StartChosenPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		if !run.SetStart(p.NodeID) {
			return fmt.Errorf("start node %s rejected", p.NodeID)
		}

	case EventTypeStepCommitted:
		if !run.Step() {
			return fmt.Errorf("step rejected")
		}

	case EventTypeRunPaused, EventTypeRunResumed:
		if !run.Toggle() {
			return fmt.Errorf("toggle rejected")
		}

	case EventTypeRunReset:
		run.Reset()

	case EventTypeNarrationSet:
		var p NarrationSetPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		run.SetNarration(p.Text, e.Version)

	default:
		slog.Warn("skipping unknown event type during replay", "type", e.EventType)
	}
	return nil
}
