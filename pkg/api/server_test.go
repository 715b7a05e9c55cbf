package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/wavefront/pkg/graph"
	"github.com/rmax-ai/wavefront/pkg/narrator"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	run := traversal.NewRun()
	narr := narrator.New(narrator.NewMockProvider())
	s := NewServer(context.Background(), run, time.Hour, nil, nil, narr, "127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_BuildAndTraverse(t *testing.T) {
	_, ts := newTestServer(t)

	// Draw the diamond: 1-2, 1-3, 2-4.
	for i := 0; i < 4; i++ {
		resp := postJSON(t, ts.URL+"/v1/nodes", AddNodeRequest{X: i, Y: 0})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		node := decode[graph.Node](t, resp)
		assert.NotEmpty(t, node.ID)
	}
	for _, pair := range [][2]string{{"1", "2"}, {"1", "3"}, {"2", "4"}} {
		resp := postJSON(t, ts.URL+"/v1/edges", ConnectRequest{From: pair[0], To: pair[1]})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := postJSON(t, ts.URL+"/v1/start", StartRequest{NodeID: "1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[traversal.Snapshot](t, resp)
	assert.Equal(t, []string{"1"}, snap.Visited)
	assert.Equal(t, []string{"1"}, snap.Frontier)

	resp = postJSON(t, ts.URL+"/v1/step", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[traversal.Snapshot](t, resp)
	assert.Equal(t, []string{"1", "2", "3"}, snap.Visited)
	assert.Equal(t, []string{"2", "3"}, snap.Frontier)

	// State reflects the same snapshot.
	getResp, err := http.Get(ts.URL + "/v1/state")
	require.NoError(t, err)
	state := decode[traversal.Snapshot](t, getResp)
	assert.Equal(t, snap.Visited, state.Visited)
}

func TestServer_ConflictPaths(t *testing.T) {
	_, ts := newTestServer(t)

	// Step with nothing to do.
	resp := postJSON(t, ts.URL+"/v1/step", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Start on an unknown node.
	resp = postJSON(t, ts.URL+"/v1/start", StartRequest{NodeID: "42"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Self-edge.
	resp = postJSON(t, ts.URL+"/v1/nodes", AddNodeRequest{X: 0, Y: 0})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/edges", ConnectRequest{From: "1", To: "1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Edits rejected after the run starts.
	resp = postJSON(t, ts.URL+"/v1/start", StartRequest{NodeID: "1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/nodes", AddNodeRequest{X: 5, Y: 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_ToggleAndReset(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/nodes", AddNodeRequest{})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/start", StartRequest{NodeID: "1"})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/v1/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[traversal.Snapshot](t, resp)
	assert.Equal(t, traversal.ModePaused, snap.Mode)

	resp = postJSON(t, ts.URL+"/v1/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[traversal.Snapshot](t, resp)
	assert.Empty(t, snap.Visited)
	assert.Equal(t, traversal.ModeEditing, snap.Mode)
}

func TestServer_EventsWithoutStore(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/events")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	events := decode[[]json.RawMessage](t, resp)
	assert.Empty(t, events)
}

func TestServer_NarrationEndpoint(t *testing.T) {
	s, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/nodes", AddNodeRequest{})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/start", StartRequest{NodeID: "1"})
	resp.Body.Close()

	// Narration is async; wait for the mock provider's response to
	// land on the run.
	require.Eventually(t, func() bool {
		return s.run.Snapshot().Narration != ""
	}, time.Second, 5*time.Millisecond)

	getResp, err := http.Get(ts.URL + "/v1/narration")
	require.NoError(t, err)
	body := decode[NarrationResponse](t, getResp)
	assert.Contains(t, body.Text, "offline narration")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/step")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "method_not_allowed", body.Error)
}
