// Package session implements the client side of one conversation: the
// append-only transcript, the send lifecycle with throttling and timeout,
// and the confirm-once handling of extracted submission commands. One
// Conversation maps onto one visitor session; nothing here is shared
// across sessions.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/inquiry"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

const (
	// Minimum interval between accepted sends. A token bucket of one:
	// double-submits and bursts are rejected, nothing is queued.
	defaultThrottle = 2 * time.Second
	// End-to-end bound on one send. The in-flight request is cancelled on
	// expiry so a late reply can never mutate history afterwards.
	defaultTimeout = 15 * time.Second
)

var (
	ErrBusy               = errors.New("a send is already in flight")
	ErrThrottled          = errors.New("sending too fast, wait a moment")
	ErrNoPendingInquiry   = errors.New("no pending inquiry to confirm")
	ErrSubmissionInFlight = errors.New("inquiry submission already in flight")
)

// Submitter is the slice of the intake client the session needs.
type Submitter interface {
	Submit(ctx context.Context, inq models.Inquiry) error
}

// Options configures a Conversation. Endpoint is the chat URL; Language is
// the visitor's locale tag. Zero durations take the defaults above.
type Options struct {
	Endpoint   string
	Language   string
	Intake     Submitter
	HTTPClient *http.Client
	Throttle   time.Duration
	Timeout    time.Duration
}

type Conversation struct {
	mu sync.Mutex

	endpoint   string
	language   string
	httpClient *http.Client
	intake     Submitter
	throttle   time.Duration
	timeout    time.Duration
	now        func() time.Time

	messages   []models.Message
	sending    bool
	submitting bool
	lastSend   time.Time
	pending    *inquiry.PendingConfirmation
}

func New(opts Options) *Conversation {
	c := &Conversation{
		endpoint:   opts.Endpoint,
		language:   opts.Language,
		httpClient: opts.HTTPClient,
		intake:     opts.Intake,
		throttle:   opts.Throttle,
		timeout:    opts.Timeout,
		now:        time.Now,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.throttle == 0 {
		c.throttle = defaultThrottle
	}
	if c.timeout == 0 {
		c.timeout = defaultTimeout
	}
	c.messages = []models.Message{{
		Role:    models.RoleAssistant,
		Content: noticesFor(c.language).Greeting,
	}}
	return c
}

// History returns a copy of the transcript.
func (c *Conversation) History() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Pending returns the confirmation awaiting user approval, if any.
func (c *Conversation) Pending() *inquiry.PendingConfirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SetLanguage switches the conversation language. If nothing but the
// greeting has happened yet, the greeting is regenerated in place rather
// than appended; an established transcript is never rewritten.
func (c *Conversation) SetLanguage(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = tag
	if len(c.messages) == 1 && c.messages[0].Role == models.RoleAssistant {
		c.messages[0].Content = noticesFor(tag).Greeting
	}
}

// Send submits one user message and appends the assistant's reply (or a
// localized degradation notice) to history. Guard rejections (ErrBusy,
// ErrThrottled) leave history untouched; every accepted send appends
// exactly one user message and exactly one reply.
func (c *Conversation) Send(ctx context.Context, text string) (string, *inquiry.PendingConfirmation, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return "", nil, ErrBusy
	}
	now := c.now()
	if !c.lastSend.IsZero() && now.Sub(c.lastSend) < c.throttle {
		c.mu.Unlock()
		return "", nil, ErrThrottled
	}
	c.sending = true
	c.lastSend = now
	c.messages = append(c.messages, models.Message{Role: models.RoleUser, Content: text})
	payload := c.outboundLocked()
	lang := c.language
	c.mu.Unlock()

	reply, pending := c.exchange(ctx, payload, lang)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	c.messages = append(c.messages, models.Message{Role: models.RoleAssistant, Content: reply})
	if pending != nil {
		c.pending = pending
	}
	return reply, pending, nil
}

// outboundLocked builds the request transcript. Messages still carrying a
// raw submission marker are filtered out so the protocol token never feeds
// back into the model.
func (c *Conversation) outboundLocked() []models.Message {
	out := make([]models.Message, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Content == "" || inquiry.HasMarker(m.Content) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// exchange performs the HTTP round trip and maps every failure onto the
// localized notice to append. The conversation itself never errors out.
func (c *Conversation) exchange(ctx context.Context, payload []models.Message, lang string) (string, *inquiry.PendingConfirmation) {
	n := noticesFor(lang)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(models.ChatRequest{Messages: payload, Language: lang})
	if err != nil {
		log.Error().Err(err).Msg("marshal chat request")
		return n.GenericError, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("create chat request")
		return n.GenericError, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Msg("chat request timed out")
			return n.Timeout, nil
		}
		log.Error().Err(err).Msg("chat request failed")
		return n.GenericError, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		// Soft: the backend is saturated, not broken.
		return n.HighTraffic, nil
	case resp.StatusCode != http.StatusOK:
		log.Error().Int("status", resp.StatusCode).Msg("chat request rejected")
		return n.GenericError, nil
	}

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		log.Error().Err(err).Msg("decode chat response")
		return n.GenericError, nil
	}

	text := chatResp.Content
	if text == "" {
		text = chatResp.Text
	}
	if text == "" {
		return n.GenericError, nil
	}

	return inquiry.Extract(text)
}

// ConfirmPending submits the pending confirmation exactly once. The
// confirmation is consumed before the intake call, so a retry after any
// outcome (including failure) finds nothing left to submit; the returned
// notice tells the user what happened.
func (c *Conversation) ConfirmPending(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return "", ErrNoPendingInquiry
	}
	pending := c.pending
	c.pending = nil
	c.submitting = true
	lang := c.language
	c.mu.Unlock()

	err := c.intake.Submit(ctx, pending.Inquiry)

	n := noticesFor(lang)
	notice := n.SubmitSuccess
	if err != nil {
		log.Error().Err(err).Str("name", pending.Inquiry.Name).Msg("inquiry submission failed")
		notice = n.SubmitFailure
	}

	c.mu.Lock()
	c.submitting = false
	c.messages = append(c.messages, models.Message{Role: models.RoleAssistant, Content: notice})
	c.mu.Unlock()
	return notice, err
}
