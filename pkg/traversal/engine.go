package traversal

import (
	"sync"

	"github.com/rmax-ai/wavefront/pkg/graph"
)

// Run is the traversal engine: a user-drawn graph plus the state of
// one breadth-first traversal over it. All operations are total over
// their preconditions; violated preconditions are absorbed as no-ops
// (the bool return reports whether state changed).
//
// Run is safe for concurrent use. Every state change bumps a
// monotonic version counter; consumers key async work (narration,
// stream pushes) on it to discard stale results.
type Run struct {
	mu sync.RWMutex

	graph    *graph.Graph
	visited  []string
	frontier []string
	start    string
	pending  string
	mode     Mode

	version          uint64
	narration        string
	narrationVersion uint64
}

// NewRun creates an engine with an empty graph in editing mode.
func NewRun() *Run {
	return &Run{
		graph: graph.New(),
		mode:  ModeEditing,
	}
}

// AddNodeAt places a new node on the canvas. Only valid while editing
// with no pending edge selection; otherwise a no-op.
func (r *Run) AddNodeAt(x, y int) (*graph.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != ModeEditing || r.pending != "" {
		return nil, false
	}
	n := r.graph.AddNode(x, y)
	r.bump()
	return n, true
}

// ClickNode routes a click on an existing node according to the
// interaction mode:
//   - editing, no pending selection: the node becomes pending
//   - editing, same node pending: selection cancelled, no edge
//   - editing, other node pending: edge created, selection cleared
//   - awaiting start: the node seeds the traversal
//   - running/paused: no-op
func (r *Run) ClickNode(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.graph.Node(id) == nil {
		return false
	}

	switch r.mode {
	case ModeEditing:
		switch r.pending {
		case "":
			r.pending = id
		case id:
			r.pending = ""
		default:
			r.graph.Connect(r.pending, id)
			r.pending = ""
		}
		r.bump()
		return true

	case ModeAwaitingStart:
		return r.seedLocked(id)
	}

	return false
}

// Connect creates an edge directly, bypassing the two-click protocol.
// Used by the API and replay; same editing-mode guard as clicks.
func (r *Run) Connect(a, b string) (*graph.Edge, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != ModeEditing {
		return nil, false
	}
	e, ok := r.graph.Connect(a, b)
	if ok {
		r.bump()
	}
	return e, ok
}

// SetStart seeds the traversal at id: visited=[id], frontier=[id].
// Valid only once per run, from editing or awaiting-start mode.
func (r *Run) SetStart(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != ModeEditing && r.mode != ModeAwaitingStart {
		return false
	}
	if r.graph.Node(id) == nil {
		return false
	}
	return r.seedLocked(id)
}

func (r *Run) seedLocked(id string) bool {
	if r.start != "" {
		return false
	}
	r.start = id
	r.visited = []string{id}
	r.frontier = []string{id}
	r.pending = ""
	r.mode = ModeRunning
	r.bump()
	NodesVisited.Set(1)
	FrontierSize.Set(1)
	return true
}

// Toggle flips the running flag. Toggling on before a start node is
// chosen enters awaiting-start; toggling off there returns to
// editing. Pause preserves the frontier and visited order, and
// resuming does not re-enter awaiting-start.
func (r *Run) Toggle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case ModeEditing:
		r.pending = ""
		r.mode = ModeAwaitingStart
	case ModeAwaitingStart:
		r.mode = ModeEditing
	case ModeRunning:
		r.mode = ModePaused
	case ModePaused:
		r.mode = ModeRunning
	default:
		return false
	}
	r.bump()
	return true
}

// Step advances the traversal by one BFS expansion: pop the frontier
// head, discover its unvisited neighbors in edge-insertion order, and
// append them to both the frontier and the visited sequence. A
// neighbor reached twice within the same step (duplicate edge) is
// discovered once. No-op when no start is chosen or the frontier is
// empty.
func (r *Run) Step() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start == "" || len(r.frontier) == 0 {
		return false
	}

	current := r.frontier[0]
	r.frontier = r.frontier[1:]

	seen := make(map[string]bool, len(r.visited))
	for _, id := range r.visited {
		seen[id] = true
	}
	for _, nbr := range r.graph.Neighbors(current) {
		if seen[nbr] {
			continue
		}
		seen[nbr] = true
		r.visited = append(r.visited, nbr)
		r.frontier = append(r.frontier, nbr)
	}

	r.bump()
	StepsTotal.Inc()
	NodesVisited.Set(float64(len(r.visited)))
	FrontierSize.Set(float64(len(r.frontier)))
	return true
}

// Reset clears the traversal state, the start node, the running flag,
// and any narration. The drawn graph is kept.
func (r *Run) Reset() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.visited = nil
	r.frontier = nil
	r.start = ""
	r.pending = ""
	r.mode = ModeEditing
	r.narration = ""
	r.bump()
	// The narration floor moves to the post-reset version so a slow
	// response computed for a pre-reset state can never resurface.
	r.narrationVersion = r.version
	NodesVisited.Set(0)
	FrontierSize.Set(0)
	return true
}

// SetNarration records narration text computed for the given state
// version. A response older than one already displayed is discarded,
// so a slow call can never overwrite narration for a newer state.
func (r *Run) SetNarration(text string, version uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if version < r.narrationVersion {
		return false
	}
	r.narration = text
	r.narrationVersion = version
	r.bump()
	return true
}

// Mode returns the current interaction mode.
func (r *Run) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// Version returns the current state version.
func (r *Run) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Done reports whether a start was chosen and the frontier drained.
func (r *Run) Done() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.start != "" && len(r.frontier) == 0
}

// Snapshot returns an immutable copy of the full engine state.
func (r *Run) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := r.graph.Clone()
	return Snapshot{
		Version:   r.version,
		Mode:      r.mode,
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		Visited:   append([]string(nil), r.visited...),
		Frontier:  append([]string(nil), r.frontier...),
		Start:     r.start,
		Pending:   r.pending,
		Narration: r.narration,
	}
}

// NodeAt exposes canvas hit-testing for the view layer.
func (r *Run) NodeAt(x, y, radius int) *graph.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := r.graph.NodeAt(x, y, radius)
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

// bump must be called with the write lock held.
func (r *Run) bump() {
	r.version++
}
