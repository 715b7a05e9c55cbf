package narrator

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// FallbackMessage is shown verbatim whenever a narration call fails.
const FallbackMessage = "Narration unavailable — the traversal continues below."

// Provider generates a natural-language narration for a prompt.
type Provider interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Update is a narration result tied to the engine state version it
// was computed for. Consumers discard updates older than what they
// already display.
type Update struct {
	Text    string
	Version uint64
}

var narrationRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wavefront_narration_requests_total",
		Help: "Narration calls by outcome",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(narrationRequests)
}
