package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

type fakeIntake struct {
	calls atomic.Int32
	err   error
}

func (f *fakeIntake) Submit(_ context.Context, _ models.Inquiry) error {
	f.calls.Add(1)
	return f.err
}

func chatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(models.ChatResponse{Role: models.RoleAssistant, Content: reply, Text: reply})
	}))
}

func TestNewStartsWithGreeting(t *testing.T) {
	c := New(Options{Language: "fr"})
	h := c.History()

	require.Len(t, h, 1)
	assert.Equal(t, models.RoleAssistant, h[0].Role)
	assert.Equal(t, noticesByLanguage[prompt.LangFrench].Greeting, h[0].Content)
}

func TestSetLanguageReplacesGreetingOnly(t *testing.T) {
	c := New(Options{Language: "en"})
	c.SetLanguage("de")

	h := c.History()
	require.Len(t, h, 1)
	assert.Equal(t, noticesByLanguage[prompt.LangGerman].Greeting, h[0].Content)
}

func TestSetLanguageKeepsEstablishedTranscript(t *testing.T) {
	srv := chatServer(t, "Hi there")
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en"})
	_, _, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)

	before := c.History()
	c.SetLanguage("es")
	assert.Equal(t, before, c.History())
}

func TestSendAppendsUserAndAssistant(t *testing.T) {
	srv := chatServer(t, "We do weddings and corporate events.")
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en"})
	reply, pending, err := c.Send(context.Background(), "What do you offer?")

	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Equal(t, "We do weddings and corporate events.", reply)

	h := c.History()
	require.Len(t, h, 3)
	assert.Equal(t, models.RoleUser, h[1].Role)
	assert.Equal(t, "What do you offer?", h[1].Content)
	assert.Equal(t, reply, h[2].Content)
}

func TestSendThrottleWindow(t *testing.T) {
	srv := chatServer(t, "ok")
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en"})
	base := time.Now()
	c.now = func() time.Time { return base }

	_, _, err := c.Send(context.Background(), "first")
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(1900 * time.Millisecond) }
	_, _, err = c.Send(context.Background(), "too fast")
	assert.ErrorIs(t, err, ErrThrottled)

	c.now = func() time.Time { return base.Add(2100 * time.Millisecond) }
	_, _, err = c.Send(context.Background(), "fine now")
	assert.NoError(t, err)

	// The throttled attempt left no trace in history.
	for _, m := range c.History() {
		assert.NotEqual(t, "too fast", m.Content)
	}
}

func TestSendRejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(models.ChatResponse{Content: "late", Text: "late"})
	}))
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en", Throttle: time.Nanosecond})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, err := c.Send(context.Background(), "slow one")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.sending
	}, time.Second, time.Millisecond)

	_, _, err := c.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
}

func TestSendTimeoutAppendsNotice(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := New(Options{Endpoint: srv.URL, Language: "es", Timeout: 50 * time.Millisecond})
	reply, pending, err := c.Send(context.Background(), "hola")

	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Equal(t, noticesByLanguage[prompt.LangSpanish].Timeout, reply)

	h := c.History()
	require.Len(t, h, 3)
	assert.Equal(t, reply, h[2].Content)
}

func TestSendHighTrafficIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en"})
	reply, _, err := c.Send(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, noticesByLanguage[prompt.LangEnglish].HighTraffic, reply)
}

func TestSendExtractsPendingAndFiltersMarkerFromOutbound(t *testing.T) {
	const markerReply = `Perfect! [[SUBMIT_INQUIRY: {"name":"Ana","email":"a@b.com","eventType":"wedding"}]]`

	var secondPayload []models.Message
	var call atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		reply := markerReply
		if call.Add(1) > 1 {
			secondPayload = req.Messages
			reply = "Anything else?"
		}
		json.NewEncoder(w).Encode(models.ChatResponse{Content: reply, Text: reply})
	}))
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, Language: "en", Throttle: time.Nanosecond})

	reply, pending, err := c.Send(context.Background(), "Please submit it")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "Ana", pending.Inquiry.Name)
	assert.Equal(t, "Perfect!", reply)
	assert.Same(t, pending, c.Pending())

	_, _, err = c.Send(context.Background(), "thanks")
	require.NoError(t, err)
	for _, m := range secondPayload {
		assert.NotContains(t, m.Content, "SUBMIT_INQUIRY")
	}
}

func TestConfirmPendingSubmitsExactlyOnce(t *testing.T) {
	srv := chatServer(t, `Done [[SUBMIT_INQUIRY: {"name":"Luc","email":"l@c.lu","eventType":"corporate"}]]`)
	defer srv.Close()

	intake := &fakeIntake{}
	c := New(Options{Endpoint: srv.URL, Language: "en", Intake: intake})

	_, pending, err := c.Send(context.Background(), "submit please")
	require.NoError(t, err)
	require.NotNil(t, pending)

	notice, err := c.ConfirmPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, noticesByLanguage[prompt.LangEnglish].SubmitSuccess, notice)

	_, err = c.ConfirmPending(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingInquiry)
	assert.Equal(t, int32(1), intake.calls.Load())
}

func TestConfirmPendingFailureConsumesAnyway(t *testing.T) {
	srv := chatServer(t, `Ok [[SUBMIT_INQUIRY: {"name":"Mia"}]]`)
	defer srv.Close()

	intake := &fakeIntake{err: assert.AnError}
	c := New(Options{Endpoint: srv.URL, Language: "de", Intake: intake})

	_, pending, err := c.Send(context.Background(), "go")
	require.NoError(t, err)
	require.NotNil(t, pending)

	notice, err := c.ConfirmPending(context.Background())
	require.Error(t, err)
	assert.Equal(t, noticesByLanguage[prompt.LangGerman].SubmitFailure, notice)
	assert.Nil(t, c.Pending())

	_, err = c.ConfirmPending(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingInquiry)
	assert.Equal(t, int32(1), intake.calls.Load())

	h := c.History()
	assert.Equal(t, notice, h[len(h)-1].Content)
}

func TestConfirmPendingWithoutInquiry(t *testing.T) {
	c := New(Options{Language: "en", Intake: &fakeIntake{}})
	_, err := c.ConfirmPending(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingInquiry)
}
