// Package export renders a traversal snapshot as a self-contained
// HTML force-graph page for sharing outside the TUI.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// Node colors by traversal status.
const (
	colorStart     = "#f59e0b"
	colorFrontier  = "#3b82f6"
	colorVisited   = "#22c55e"
	colorUnvisited = "#9ca3af"
)

// Canvas cells are sparse; spread them out for the HTML view.
const coordinateScale = 40

// Render writes the snapshot as an HTML page.
func Render(snap traversal.Snapshot, w io.Writer) error {
	visited := snap.VisitedSet()
	frontier := snap.FrontierSet()

	nodes := make([]opts.GraphNode, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		color := colorUnvisited
		switch {
		case n.ID == snap.Start:
			color = colorStart
		case frontier[n.ID]:
			color = colorFrontier
		case visited[n.ID]:
			color = colorVisited
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.X * coordinateScale),
			Y:          float32(n.Y * coordinateScale),
			SymbolSize: 30,
			ItemStyle:  &opts.ItemStyle{Color: color},
		})
	}

	links := make([]opts.GraphLink, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		links = append(links, opts.GraphLink{
			Source: e.From,
			Target: e.To,
		})
	}

	page := components.NewPage()
	page.AddCharts(graphBase(nodes, links))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render graph page: %w", err)
	}
	return nil
}

// RenderToFile writes the snapshot to filename, appending ".html" if
// missing.
func RenderToFile(snap traversal.Snapshot, filename string) error {
	if len(filename) < 5 || filename[len(filename)-5:] != ".html" {
		filename += ".html"
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	return Render(snap, f)
}

func graphBase(nodes []opts.GraphNode, links []opts.GraphLink) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "wavefront traversal",
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"traversal",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:    "none",
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	)
	return graph
}
