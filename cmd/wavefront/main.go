// wavefront runs a breadth-first traversal headlessly: load a graph
// file, pick a start node, print the discovery order, optionally
// export an HTML snapshot.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rmax-ai/wavefront/pkg/export"
	"github.com/rmax-ai/wavefront/pkg/graph"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

func main() {
	graphPath := flag.String("graph", "", "path to a graph JSON file")
	startID := flag.String("start", "1", "start node ID")
	exportPath := flag.String("export", "", "write an HTML snapshot to this path")
	flag.Parse()

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "usage: wavefront -graph graph.json [-start ID] [-export out.html]")
		os.Exit(2)
	}

	g, err := graph.Load(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	run := traversal.NewRun()
	for _, n := range g.Nodes {
		run.AddNodeAt(n.X, n.Y)
	}
	for _, e := range g.Edges {
		run.Connect(e.From, e.To)
	}

	if !run.SetStart(*startID) {
		fmt.Fprintf(os.Stderr, "error: unknown start node %q\n", *startID)
		os.Exit(1)
	}

	step := 0
	fmt.Printf("start %s\n", *startID)
	for run.Step() {
		step++
		snap := run.Snapshot()
		fmt.Printf("step %d: visited=[%s] queue=[%s]\n",
			step,
			strings.Join(snap.Visited, " "),
			strings.Join(snap.Frontier, " "),
		)
	}

	snap := run.Snapshot()
	fmt.Printf("done: %d of %d nodes reachable from %s\n", len(snap.Visited), len(snap.Nodes), *startID)

	if *exportPath != "" {
		if err := export.RenderToFile(snap, *exportPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}
