package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

// WSHandler serves the WebSocket chat channel. Each connection owns its
// transcript in memory for the lifetime of the socket; every send puts a
// transcript snapshot on the inbound stream, so nothing about the
// conversation survives the connection server-side.
type WSHandler struct {
	rdb            *redis.Client
	allowedOrigins map[string]bool
}

func NewWSHandler(rdb *redis.Client, allowedOrigins []string) *WSHandler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WSHandler{rdb: rdb, allowedOrigins: origins}
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // allow non-browser clients
	}
	return h.allowedOrigins[origin]
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	language := r.URL.Query().Get("lang")
	if language == "" {
		language = "en"
	}

	if err := conn.WriteJSON(models.WSResponse{Type: "connected", SessionID: sessionID}); err != nil {
		log.Warn().Err(err).Msg("send connected frame")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The transcript for this connection. Written by the read loop (user
	// turns) and the forwarder (assistant turns).
	var mu sync.Mutex
	var transcript []models.Message

	pubsub := h.rdb.Subscribe(ctx, models.ResponsePrefix+sessionID)
	defer pubsub.Close()

	// Forward worker responses to the socket and fold assistant replies
	// into the transcript.
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var resp models.WSResponse
				if err := json.Unmarshal([]byte(msg.Payload), &resp); err != nil {
					log.Warn().Err(err).Msg("bad response frame")
					continue
				}
				if resp.Type == "message" {
					mu.Lock()
					transcript = append(transcript, models.Message{Role: models.RoleAssistant, Content: resp.Text})
					mu.Unlock()
				}
				if err := conn.WriteJSON(resp); err != nil {
					log.Warn().Err(err).Msg("write to websocket")
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", sessionID).Msg("websocket closed unexpectedly")
			}
			return
		}

		var incoming models.WSIncoming
		if err := json.Unmarshal(message, &incoming); err != nil {
			conn.WriteJSON(models.WSResponse{
				Type: "error",
				Text: "Invalid message format. Send JSON with a 'text' field.",
			})
			continue
		}
		if incoming.Text == "" {
			continue
		}

		mu.Lock()
		transcript = append(transcript, models.Message{Role: models.RoleUser, Content: incoming.Text})
		envelope := NormalizeEnvelope(sessionID, language, transcript)
		mu.Unlock()

		envelopeJSON, err := json.Marshal(envelope)
		if err != nil {
			log.Error().Err(err).Msg("marshal envelope")
			continue
		}

		if err := h.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: models.StreamKey,
			Values: map[string]interface{}{"envelope": string(envelopeJSON)},
		}).Err(); err != nil {
			log.Error().Err(err).Msg("publish to stream")
			conn.WriteJSON(models.WSResponse{
				Type: "error",
				Text: "Sorry, I'm having trouble processing your message. Please try again.",
			})
		}
	}
}

// NormalizeEnvelope wraps a transcript snapshot into the unit of work the
// router worker consumes.
func NormalizeEnvelope(sessionID, language string, messages []models.Message) models.MessageEnvelope {
	snapshot := make([]models.Message, len(messages))
	copy(snapshot, messages)
	return models.MessageEnvelope{
		MessageID: uuid.New().String(),
		SessionID: sessionID,
		Channel:   "web",
		Timestamp: time.Now().UTC(),
		Messages:  snapshot,
		Language:  language,
	}
}
