// Package streaming defines the JSON messages exchanged with a remote mission
// store over WebSocket. Every request carries an ID; the server answers with
// one Reply carrying the same ID.
package streaming

import (
	"encoding/json"
)

// Request types.
const (
	TypeSaveMission  = "save_mission"
	TypeLoadMission  = "load_mission"
	TypeListMissions = "list_missions"
)

// TypeReply is the type of every server response.
const TypeReply = "reply"

// Envelope wraps all requests sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the server's answer to one Envelope.
type Reply struct {
	Type     string          `json:"type"` // always "reply"
	ID       uint64          `json:"id"`
	Error    string          `json:"error,omitempty"`
	NotFound bool            `json:"notFound,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ListPayload is the payload of a list_missions reply.
type ListPayload struct {
	Names []string `json:"names"`
}
