package client

import (
	"encoding/json"
	"time"
)

// Event mirrors the store event envelope. Duplicated here so client
// consumers (the MCP adapter, tooling) do not link the CGO sqlite
// driver.
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	SessionID string          `json:"session_id"`
	Version   uint64          `json:"version"`
	TsEvent   time.Time       `json:"ts_event"`
	TsIngest  time.Time       `json:"ts_ingest"`
	Payload   json.RawMessage `json:"payload"`
}
