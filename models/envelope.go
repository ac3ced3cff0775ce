package models

import "time"

// Redis names shared by the WebSocket channel and the router worker.
const (
	// StreamKey is the inbound stream envelopes are queued on.
	StreamKey = "msg:inbound"
	// ResponsePrefix prefixes the per-session response pub/sub channel.
	ResponsePrefix = "response:"
)

// MessageEnvelope is the unit of work placed on the inbound Redis stream by
// the WebSocket channel. It carries a snapshot of the conversation so the
// worker stays stateless: nothing about the transcript outlives the request.
type MessageEnvelope struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
	Language  string    `json:"language"`
}

// WSIncoming is a frame read from a WebSocket client.
type WSIncoming struct {
	Text string `json:"text"`
}

// WSResponse is a frame written to a WebSocket client. Type is one of
// "connected", "typing", "message" or "error". Inquiry is set when the
// assistant reply embedded a submission command.
type WSResponse struct {
	Type      string   `json:"type"`
	Text      string   `json:"text,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Inquiry   *Inquiry `json:"inquiry,omitempty"`
}
