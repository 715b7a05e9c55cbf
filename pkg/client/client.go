// Package client is a typed HTTP client for the wavefront daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rmax-ai/wavefront/pkg/graph"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

const defaultEndpoint = "http://127.0.0.1:8071"

// Client talks to the wavefront daemon API.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
	retries  int
}

// NewClient creates a client. endpoint defaults to the daemon's
// standard local address if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		backoff:  DefaultBackoff(),
		retries:  2,
	}
}

// State fetches the full engine snapshot.
func (c *Client) State(ctx context.Context) (traversal.Snapshot, error) {
	var snap traversal.Snapshot
	err := c.get(ctx, "/v1/state", &snap)
	return snap, err
}

// Graph fetches the node and edge lists.
func (c *Client) Graph(ctx context.Context) (*graph.Graph, error) {
	var body struct {
		Nodes []*graph.Node `json:"nodes"`
		Edges []*graph.Edge `json:"edges"`
	}
	if err := c.get(ctx, "/v1/graph", &body); err != nil {
		return nil, err
	}

	g := graph.New()
	for _, n := range body.Nodes {
		g.AddNode(n.X, n.Y)
	}
	for _, e := range body.Edges {
		g.Connect(e.From, e.To)
	}
	return g, nil
}

// Events fetches recent session events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	err := c.get(ctx, fmt.Sprintf("/v1/events?limit=%d", limit), &events)
	return events, err
}

// Narration fetches the current narration text.
func (c *Client) Narration(ctx context.Context) (string, error) {
	var body struct {
		Text string `json:"text"`
	}
	err := c.get(ctx, "/v1/narration", &body)
	return body.Text, err
}

// AddNode places a node on the canvas.
func (c *Client) AddNode(ctx context.Context, x, y int) (*graph.Node, error) {
	var node graph.Node
	if err := c.post(ctx, "/v1/nodes", map[string]int{"x": x, "y": y}, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// ConnectNodes creates an undirected edge.
func (c *Client) ConnectNodes(ctx context.Context, from, to string) error {
	return c.post(ctx, "/v1/edges", map[string]string{"from": from, "to": to}, nil)
}

// SetStart seeds the traversal and starts the stepping loop.
func (c *Client) SetStart(ctx context.Context, nodeID string) (traversal.Snapshot, error) {
	var snap traversal.Snapshot
	err := c.post(ctx, "/v1/start", map[string]string{"node_id": nodeID}, &snap)
	return snap, err
}

// Step advances the traversal by one expansion.
func (c *Client) Step(ctx context.Context) (traversal.Snapshot, error) {
	var snap traversal.Snapshot
	err := c.post(ctx, "/v1/step", nil, &snap)
	return snap, err
}

// Toggle flips the running flag.
func (c *Client) Toggle(ctx context.Context) (traversal.Snapshot, error) {
	var snap traversal.Snapshot
	err := c.post(ctx, "/v1/toggle", nil, &snap)
	return snap, err
}

// Reset clears the traversal state.
func (c *Client) Reset(ctx context.Context) error {
	return c.post(ctx, "/v1/reset", nil, nil)
}

// get performs a GET with retries; reads are idempotent.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = c.do(ctx, http.MethodGet, path, nil, out); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// post performs a single POST. Mutations are never retried.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (HTTP %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
