package narrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// BuildPrompt serializes a traversal snapshot into the free-text
// prompt sent to the language model: node list, edge list, current
// frontier, and visited order.
func BuildPrompt(snap traversal.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("You are narrating a breadth-first search on a small undirected graph.\n")

	nodeIDs := make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}
	fmt.Fprintf(&sb, "Nodes: %s\n", strings.Join(nodeIDs, ", "))

	edges := make([]string, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		edges = append(edges, fmt.Sprintf("%s-%s", e.From, e.To))
	}
	if len(edges) == 0 {
		sb.WriteString("Edges: none\n")
	} else {
		fmt.Fprintf(&sb, "Edges: %s\n", strings.Join(edges, ", "))
	}

	fmt.Fprintf(&sb, "Start node: %s\n", snap.Start)
	fmt.Fprintf(&sb, "Visited so far, in discovery order: %s\n", strings.Join(snap.Visited, ", "))
	if len(snap.Frontier) == 0 {
		sb.WriteString("Queue: empty — the traversal is complete.\n")
	} else {
		fmt.Fprintf(&sb, "Queue (next to expand first): %s\n", strings.Join(snap.Frontier, ", "))
	}

	sb.WriteString("In two or three sentences, explain to a student what just happened and what the search will do next.")
	return sb.String()
}

// Fingerprint returns a stable key for the traversal-relevant parts
// of a snapshot, used to cache narrations across identical states.
func Fingerprint(snap traversal.Snapshot) string {
	var sb strings.Builder
	for _, n := range snap.Nodes {
		fmt.Fprintf(&sb, "n%s;", n.ID)
	}
	for _, e := range snap.Edges {
		fmt.Fprintf(&sb, "e%s-%s;", e.From, e.To)
	}
	fmt.Fprintf(&sb, "s%s;v%s;f%s",
		snap.Start, strings.Join(snap.Visited, ","), strings.Join(snap.Frontier, ","))

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
