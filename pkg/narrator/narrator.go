// Package narrator turns traversal snapshots into natural-language
// commentary via an external text-generation provider. Calls are
// fire-and-forget with respect to the engine: results only ever
// update a display string, and a failed call degrades to a fixed
// fallback message.
package narrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

const defaultTimeout = 15 * time.Second

// Narrator requests narrations keyed by engine state version. A
// response is delivered only if no newer snapshot has been resolved
// in the meantime, so a slow call cannot overwrite narration for a
// later state.
type Narrator struct {
	provider Provider
	cache    *Cache
	timeout  time.Duration

	mu        sync.Mutex
	delivered uint64
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithCache attaches a narration response cache.
func WithCache(c *Cache) Option {
	return func(n *Narrator) { n.cache = c }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Narrator) { n.timeout = d }
}

// New creates a narrator backed by the given provider.
func New(provider Provider, opts ...Option) *Narrator {
	n := &Narrator{
		provider: provider,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Narrate resolves a narration for the snapshot synchronously: cache
// first, then a provider call bounded by the narrator's timeout. Any
// error yields the fixed fallback text. Returns false when the
// snapshot has nothing to narrate (no visited nodes yet).
func (n *Narrator) Narrate(ctx context.Context, snap traversal.Snapshot) (Update, bool) {
	if len(snap.Visited) == 0 {
		return Update{}, false
	}

	key := Fingerprint(snap)
	if n.cache != nil {
		if text, ok := n.cache.Get(ctx, key); ok {
			narrationRequests.WithLabelValues("cache_hit").Inc()
			return Update{Text: text, Version: snap.Version}, true
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.provider.Narrate(callCtx, BuildPrompt(snap))
	if err != nil {
		slog.Warn("narration call failed", "error", err, "version", snap.Version)
		narrationRequests.WithLabelValues("error").Inc()
		return Update{Text: FallbackMessage, Version: snap.Version}, true
	}
	narrationRequests.WithLabelValues("ok").Inc()

	if n.cache != nil {
		n.cache.Set(ctx, key, text)
	}
	return Update{Text: text, Version: snap.Version}, true
}

// Request launches an asynchronous narration for the snapshot and
// hands the result to deliver. A result that resolves after a newer
// snapshot's narration has already landed is discarded.
func (n *Narrator) Request(ctx context.Context, snap traversal.Snapshot, deliver func(Update)) {
	if len(snap.Visited) == 0 {
		return
	}

	go func() {
		update, ok := n.Narrate(ctx, snap)
		if !ok {
			return
		}

		n.mu.Lock()
		if update.Version < n.delivered {
			n.mu.Unlock()
			narrationRequests.WithLabelValues("stale").Inc()
			slog.Debug("discarding stale narration", "version", update.Version, "delivered", n.delivered)
			return
		}
		n.delivered = update.Version
		n.mu.Unlock()

		deliver(update)
	}()
}
