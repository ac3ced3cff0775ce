package models

// Message is one turn of a conversation transcript. The transcript is
// append-only and owned by the client session for its lifetime; the server
// never stores it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Language string    `json:"language"`
}

// ChatResponse is the 200 body of POST /chat. Content and Text carry the
// same value; both fields are kept for client compatibility. IsOverloaded
// marks a soft-degraded reply produced after every model candidate failed.
type ChatResponse struct {
	Role         string `json:"role"`
	Content      string `json:"content"`
	Text         string `json:"text"`
	IsOverloaded bool   `json:"isOverloaded,omitempty"`
}

// ErrorResponse is the non-200 body for configuration and input errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
