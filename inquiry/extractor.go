// Package inquiry implements the embedded lead-submission protocol: the
// model signals "submit this lead" by wrapping a JSON object in a
// [[SUBMIT_INQUIRY: ...]] marker inside its reply. This package finds the
// marker, validates the payload and produces a confirmation the user must
// approve before anything is sent to the intake collaborator.
package inquiry

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

const marker = "[[SUBMIT_INQUIRY:"

var markerPattern = regexp.MustCompile(`\[\[SUBMIT_INQUIRY:\s*(.*?)\]\]`)

// Defaults applied when the model omitted optional fields.
const (
	defaultEmail     = "provided-in-chat@example.com"
	defaultEventType = "other"
)

// PendingConfirmation is an extracted, not-yet-submitted lead awaiting
// explicit user approval. It is consumed exactly once.
type PendingConfirmation struct {
	Inquiry models.Inquiry
	Raw     string
}

// HasMarker reports whether text carries the submission marker. Messages
// that do are kept out of outbound prompt payloads.
func HasMarker(text string) bool {
	return strings.Contains(text, marker)
}

// Extract scans an assistant reply for the submission marker. It returns
// the text to display (the literal marker is never shown verbatim) and, if
// the payload parsed and validated, the pending confirmation. A malformed
// payload degrades to plain text: the conversation must never break because
// the model emitted bad JSON.
func Extract(text string) (string, *PendingConfirmation) {
	if !strings.Contains(text, marker) {
		return text, nil
	}

	m := markerPattern.FindStringSubmatchIndex(text)
	if m == nil {
		// Marker opened but never closed. Drop the broken tail, keep the
		// text before it.
		log.Warn().Msg("submission marker without closing delimiter")
		return strings.TrimSpace(text[:strings.Index(text, marker)]), nil
	}

	display := strings.TrimSpace(text[:m[0]] + text[m[1]:])
	raw := text[m[2]:m[3]]

	inq, err := parsePayload(raw)
	if err != nil {
		log.Warn().Err(err).Str("payload", raw).Msg("discarding malformed submission command")
		return display, nil
	}

	return display, &PendingConfirmation{Inquiry: inq, Raw: raw}
}

// parsePayload decodes and validates the command JSON. The model is not a
// trusted peer: every field is type-checked and only name is required.
func parsePayload(raw string) (models.Inquiry, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.Inquiry{}, err
	}

	name, err := stringField(fields, "name")
	if err != nil {
		return models.Inquiry{}, err
	}
	if strings.TrimSpace(name) == "" {
		return models.Inquiry{}, errMissingName
	}

	inq := models.Inquiry{Name: name}
	for key, dst := range map[string]*string{
		"email":     &inq.Email,
		"eventType": &inq.EventType,
		"eventDate": &inq.EventDate,
		"phone":     &inq.Phone,
		"message":   &inq.Message,
	} {
		v, err := stringField(fields, key)
		if err != nil {
			return models.Inquiry{}, err
		}
		*dst = v
	}

	if inq.Email == "" {
		inq.Email = defaultEmail
	}
	if inq.EventType == "" {
		inq.EventType = defaultEventType
	}
	inq.Message = "From Chat: " + orElse(inq.Message, "No details")

	return inq, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &fieldTypeError{key: key}
	}
	return s, nil
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
