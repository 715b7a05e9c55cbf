package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// Drive a full session through a recorder, then replay it and check
// the rebuilt engine matches the live one exactly.
func TestRecorderReplayRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := NewRecorder(s)

	run := traversal.NewRun()

	for i := 0; i < 4; i++ {
		node, ok := run.AddNodeAt(i*2, i)
		require.True(t, ok)
		rec.NodeAdded(ctx, run.Version(), node)
	}
	for _, pair := range [][2]string{{"1", "2"}, {"1", "3"}, {"2", "4"}} {
		edge, ok := run.Connect(pair[0], pair[1])
		require.True(t, ok)
		rec.EdgeAdded(ctx, run.Version(), edge)
	}

	require.True(t, run.SetStart("1"))
	rec.StartChosen(ctx, run.Version(), "1")

	require.True(t, run.Step())
	rec.StepCommitted(ctx, run.Snapshot(), "1")

	require.True(t, run.Toggle()) // pause
	rec.RunPaused(ctx, run.Version())
	require.True(t, run.Toggle()) // resume
	rec.RunResumed(ctx, run.Version())

	require.True(t, run.Step())
	rec.StepCommitted(ctx, run.Snapshot(), "2")

	run.SetNarration("level two reached", run.Version())
	rec.NarrationSet(ctx, run.Version(), "level two reached")

	replayed, err := Replay(ctx, s, rec.SessionID())
	require.NoError(t, err)

	want := run.Snapshot()
	got := replayed.Snapshot()

	assert.Equal(t, want.Visited, got.Visited)
	assert.Equal(t, want.Frontier, got.Frontier)
	assert.Equal(t, want.Start, got.Start)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Narration, got.Narration)
	assert.Equal(t, len(want.Nodes), len(got.Nodes))
	assert.Equal(t, len(want.Edges), len(got.Edges))

	// Node IDs come out identical because creation order is replayed.
	for i := range want.Nodes {
		assert.Equal(t, want.Nodes[i].ID, got.Nodes[i].ID)
		assert.Equal(t, want.Nodes[i].X, got.Nodes[i].X)
	}
}

func TestReplayAfterReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := NewRecorder(s)

	run := traversal.NewRun()
	node, _ := run.AddNodeAt(0, 0)
	rec.NodeAdded(ctx, run.Version(), node)

	require.True(t, run.SetStart("1"))
	rec.StartChosen(ctx, run.Version(), "1")

	run.Reset()
	rec.RunReset(ctx, run.Version())

	replayed, err := Replay(ctx, s, rec.SessionID())
	require.NoError(t, err)

	snap := replayed.Snapshot()
	assert.Empty(t, snap.Start)
	assert.Empty(t, snap.Visited)
	assert.Equal(t, traversal.ModeEditing, snap.Mode)
	assert.Len(t, snap.Nodes, 1)
}

func TestReplayUnknownSessionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	replayed, err := Replay(context.Background(), s, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, replayed.Snapshot().Nodes)
}
