// Package router is the worker behind the WebSocket channel: it consumes
// message envelopes from the inbound Redis stream, runs the inference
// gateway and the command extractor, and publishes response frames on the
// session's pub/sub channel.
package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/gateway"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/inquiry"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

const (
	consumerGroup = "chat-workers"
	consumerName  = "chat-worker-1"
	readBlock     = 5 * time.Second
)

// Completer is the slice of the inference gateway the worker needs.
type Completer interface {
	Complete(ctx context.Context, artifact prompt.Artifact) gateway.Result
}

type Worker struct {
	rdb *redis.Client
	gw  Completer
}

func New(rdb *redis.Client, gw Completer) *Worker {
	return &Worker{rdb: rdb, gw: gw}
}

// EnsureConsumerGroup creates the stream and consumer group if needed.
func (w *Worker) EnsureConsumerGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, models.StreamKey, consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return errors.Wrap(err, "create consumer group")
	}
	return nil
}

// ConsumeLoop reads envelopes until the context is cancelled. Every stream
// entry is acknowledged exactly once, valid or not; a malformed entry is
// dropped, never retried forever.
func (w *Worker) ConsumeLoop(ctx context.Context) {
	log.Info().Str("stream", models.StreamKey).Msg("starting consumer loop")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  []string{models.StreamKey, ">"},
			Count:    1,
			Block:    readBlock,
		}).Result()

		if err == redis.Nil || (err != nil && ctx.Err() != nil) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("read stream")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.handleEntry(ctx, msg)
			}
		}
	}
}

func (w *Worker) handleEntry(ctx context.Context, msg redis.XMessage) {
	defer w.rdb.XAck(ctx, models.StreamKey, consumerGroup, msg.ID)

	envelopeJSON, ok := msg.Values["envelope"].(string)
	if !ok {
		log.Warn().Str("id", msg.ID).Msg("stream entry missing envelope field")
		return
	}

	var envelope models.MessageEnvelope
	if err := json.Unmarshal([]byte(envelopeJSON), &envelope); err != nil {
		log.Warn().Err(err).Str("id", msg.ID).Msg("unmarshal envelope")
		return
	}

	log.Info().Str("message", envelope.MessageID).Str("session", envelope.SessionID).
		Msg("processing envelope")

	w.publish(ctx, envelope.SessionID, models.WSResponse{Type: "typing"})

	frame := HandleEnvelope(ctx, w.gw, envelope)
	w.publish(ctx, envelope.SessionID, frame)
}

// HandleEnvelope runs one envelope through the gateway and the extractor
// and produces the response frame. Split out of the consume loop so the
// conversational behavior is testable without Redis.
func HandleEnvelope(ctx context.Context, gw Completer, envelope models.MessageEnvelope) models.WSResponse {
	artifact := prompt.Build(envelope.Messages, envelope.Language)
	res := gw.Complete(ctx, artifact)

	display, pending := inquiry.Extract(res.Text)
	frame := models.WSResponse{
		Type:      "message",
		Text:      display,
		SessionID: envelope.SessionID,
	}
	if pending != nil {
		frame.Inquiry = &pending.Inquiry
	}
	return frame
}

func (w *Worker) publish(ctx context.Context, sessionID string, resp models.WSResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("marshal response frame")
		return
	}
	if err := w.rdb.Publish(ctx, models.ResponsePrefix+sessionID, string(data)).Err(); err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("publish response frame")
	}
}
