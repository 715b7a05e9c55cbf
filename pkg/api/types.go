package api

// Request/response shapes for the daemon HTTP surface.

// AddNodeRequest places a node on the canvas.
type AddNodeRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ConnectRequest creates an undirected edge.
type ConnectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// StartRequest chooses the traversal start node.
type StartRequest struct {
	NodeID string `json:"node_id"`
}

// NarrationResponse carries the current narration text.
type NarrationResponse struct {
	Text    string `json:"text"`
	Version uint64 `json:"version"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
