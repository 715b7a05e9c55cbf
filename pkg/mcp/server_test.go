package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestMCPServer_ReadState(t *testing.T) {
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/state" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"version": 4, "mode": "running", "visited": ["1", "2"], "frontier": ["2"], "start": "1"}`))
			return
		}
		http.NotFound(w, r)
	})
	ts := httptest.NewServer(apiHandler)
	defer ts.Close()

	s := NewServer(ts.URL)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: "wavefront://state",
		},
	}

	result, err := s.handleReadState(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadState failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("Expected 1 resource content, got %d", len(result))
	}

	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected TextResourceContents")
	}
	if content.MIMEType != "application/json" {
		t.Errorf("Expected application/json, got %s", content.MIMEType)
	}

	var snap map[string]interface{}
	if err := json.Unmarshal([]byte(content.Text), &snap); err != nil {
		t.Errorf("Failed to parse result JSON: %v", err)
	}
	if snap["start"] != "1" {
		t.Errorf("Expected start node 1, got %v", snap["start"])
	}
}

func TestMCPServer_AddNode(t *testing.T) {
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/nodes" && r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "3", "x": 10, "y": 4}`))
			return
		}
		http.NotFound(w, r)
	})
	ts := httptest.NewServer(apiHandler)
	defer ts.Close()

	s := NewServer(ts.URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "add_node",
			Arguments: map[string]interface{}{
				"x": float64(10),
				"y": float64(4),
			},
		},
	}

	result, err := s.handleAddNode(context.Background(), req)
	if err != nil {
		t.Fatalf("handleAddNode failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got tool error")
	}

	text := result.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "Node 3") || !strings.Contains(text, "(10, 4)") {
		t.Errorf("Unexpected tool result: %q", text)
	}
}

func TestMCPServer_StepConflictIsToolError(t *testing.T) {
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "nothing_to_step"}`))
	})
	ts := httptest.NewServer(apiHandler)
	defer ts.Close()

	s := NewServer(ts.URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "step"},
	}

	result, err := s.handleStep(context.Background(), req)
	if err != nil {
		t.Fatalf("handleStep returned protocol error: %v", err)
	}
	if !result.IsError {
		t.Errorf("Expected a tool error for a rejected step")
	}
}
