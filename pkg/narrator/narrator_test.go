package narrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

func buildSnapshot(t *testing.T) traversal.Snapshot {
	t.Helper()
	run := traversal.NewRun()
	for i := 0; i < 3; i++ {
		run.AddNodeAt(i, 0)
	}
	run.Connect("1", "2")
	run.Connect("2", "3")
	run.SetStart("1")
	run.Step()
	return run.Snapshot()
}

func TestNarrate_UsesProvider(t *testing.T) {
	mock := NewMockProvider()
	n := New(mock)

	update, ok := n.Narrate(context.Background(), buildSnapshot(t))
	assert.True(t, ok)
	assert.Contains(t, update.Text, "offline narration")
	assert.Equal(t, 1, mock.Calls())
}

func TestNarrate_FailureYieldsExactFallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Err = errors.New("api quota exceeded")
	n := New(mock)

	update, ok := n.Narrate(context.Background(), buildSnapshot(t))
	assert.True(t, ok)
	assert.Equal(t, FallbackMessage, update.Text)
}

func TestNarrate_NothingToNarrate(t *testing.T) {
	n := New(NewMockProvider())

	run := traversal.NewRun()
	run.AddNodeAt(0, 0)

	_, ok := n.Narrate(context.Background(), run.Snapshot())
	assert.False(t, ok)
}

// slowProvider delays responses so staleness can be forced.
type slowProvider struct {
	delay time.Duration
	text  string
}

func (p *slowProvider) Narrate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(p.delay):
		return p.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestRequest_DiscardsStaleResponse(t *testing.T) {
	snapOld := buildSnapshot(t)

	runNew := traversal.NewRun()
	runNew.AddNodeAt(0, 0)
	runNew.SetStart("1")
	snapNew := runNew.Snapshot()
	// Force distinct versions: the "old" snapshot must be older.
	snapOld.Version = snapNew.Version - 1

	n := New(&slowProvider{text: "response"})

	var (
		mu        sync.Mutex
		delivered []uint64
	)
	deliver := func(u Update) {
		mu.Lock()
		delivered = append(delivered, u.Version)
		mu.Unlock()
	}

	// Newer snapshot resolves first; the older one must be dropped.
	n.Request(context.Background(), snapNew, deliver)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, time.Second, 5*time.Millisecond)

	n.Request(context.Background(), snapOld, deliver)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{snapNew.Version}, delivered)
}

func TestBuildPrompt_ContainsState(t *testing.T) {
	snap := buildSnapshot(t)
	prompt := BuildPrompt(snap)

	assert.Contains(t, prompt, "Nodes: 1, 2, 3")
	assert.Contains(t, prompt, "1-2")
	assert.Contains(t, prompt, "2-3")
	assert.Contains(t, prompt, "Start node: 1")
	assert.Contains(t, prompt, "Visited so far, in discovery order: 1, 2")
	assert.Contains(t, prompt, "Queue")
}

func TestBuildPrompt_EmptyQueue(t *testing.T) {
	run := traversal.NewRun()
	run.AddNodeAt(0, 0)
	run.SetStart("1")
	run.Step()

	prompt := BuildPrompt(run.Snapshot())
	if !strings.Contains(prompt, "Queue: empty") {
		t.Errorf("expected completed-queue wording, got:\n%s", prompt)
	}
}

func TestFingerprint_IgnoresVersion(t *testing.T) {
	a := buildSnapshot(t)
	b := a
	b.Version = a.Version + 100

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_ReflectsTraversalState(t *testing.T) {
	a := buildSnapshot(t)

	run := traversal.NewRun()
	for i := 0; i < 3; i++ {
		run.AddNodeAt(i, 0)
	}
	run.Connect("1", "2")
	run.Connect("2", "3")
	run.SetStart("1")
	run.Step()
	run.Step()

	assert.NotEqual(t, Fingerprint(a), Fingerprint(run.Snapshot()))
}
