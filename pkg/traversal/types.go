package traversal

import (
	"github.com/rmax-ai/wavefront/pkg/graph"
)

// Mode is the interaction mode of a run. It governs how node and
// canvas clicks are routed; it is distinct from the traversal state
// itself (pausing preserves the frontier and visited order).
type Mode string

const (
	// ModeEditing: no run in progress; clicks edit the graph.
	ModeEditing Mode = "editing"
	// ModeAwaitingStart: run toggled on, no start node chosen yet;
	// the next node click seeds the traversal.
	ModeAwaitingStart Mode = "awaiting_start"
	// ModeRunning: stepping on a fixed interval.
	ModeRunning Mode = "running"
	// ModePaused: run toggled off without reset; state preserved.
	ModePaused Mode = "paused"
)

// Snapshot is an immutable copy of engine state handed to consumers:
// the view layer, the narrator, the API. It never feeds back into
// traversal decisions.
type Snapshot struct {
	Version   uint64        `json:"version"`
	Mode      Mode          `json:"mode"`
	Nodes     []*graph.Node `json:"nodes"`
	Edges     []*graph.Edge `json:"edges"`
	Visited   []string      `json:"visited"`
	Frontier  []string      `json:"frontier"`
	Start     string        `json:"start,omitempty"`
	Pending   string        `json:"pending,omitempty"`
	Narration string        `json:"narration,omitempty"`
}

// Done reports whether the traversal has drained: a start was chosen
// and the frontier is empty.
func (s Snapshot) Done() bool {
	return s.Start != "" && len(s.Frontier) == 0
}

// VisitedSet returns visited membership as a map for renderers.
func (s Snapshot) VisitedSet() map[string]bool {
	set := make(map[string]bool, len(s.Visited))
	for _, id := range s.Visited {
		set[id] = true
	}
	return set
}

// FrontierSet returns frontier membership as a map for renderers.
func (s Snapshot) FrontierSet() map[string]bool {
	set := make(map[string]bool, len(s.Frontier))
	for _, id := range s.Frontier {
		set[id] = true
	}
	return set
}
