// wavefront-mcp serves the Model Context Protocol adapter on stdio,
// proxying to a running wavefront-d.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rmax-ai/wavefront/pkg/mcp"
)

func main() {
	daemonURL := flag.String("daemon", "", "wavefront-d base URL (default http://127.0.0.1:8071)")
	flag.Parse()

	server := mcp.NewServer(*daemonURL)
	if err := server.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
