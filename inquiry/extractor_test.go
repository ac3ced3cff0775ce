package inquiry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

func TestExtractNoMarker(t *testing.T) {
	display, pending := Extract("We offer photo and video coverage.")
	assert.Equal(t, "We offer photo and video coverage.", display)
	assert.Nil(t, pending)
}

func TestExtractRoundTrip(t *testing.T) {
	text := `Hello [[SUBMIT_INQUIRY: {"name":"Ana","email":"a@b.com","eventType":"wedding"}]]`
	display, pending := Extract(text)

	require.NotNil(t, pending)
	assert.Equal(t, "Ana", pending.Inquiry.Name)
	assert.Equal(t, "a@b.com", pending.Inquiry.Email)
	assert.Equal(t, "wedding", pending.Inquiry.EventType)
	assert.NotContains(t, display, "SUBMIT_INQUIRY")
	assert.Equal(t, "Hello", display)
}

func TestExtractAppliesDefaults(t *testing.T) {
	_, pending := Extract(`[[SUBMIT_INQUIRY: {"name":"Luc"}]]`)

	require.NotNil(t, pending)
	assert.Equal(t, "provided-in-chat@example.com", pending.Inquiry.Email)
	assert.Equal(t, "other", pending.Inquiry.EventType)
	assert.Equal(t, "From Chat: No details", pending.Inquiry.Message)
}

func TestExtractPrefixesChatMessage(t *testing.T) {
	_, pending := Extract(`[[SUBMIT_INQUIRY: {"name":"Luc","message":"June wedding in Vianden"}]]`)

	require.NotNil(t, pending)
	assert.Equal(t, "From Chat: June wedding in Vianden", pending.Inquiry.Message)
}

func TestExtractMalformedJSONKeepsSurroundingText(t *testing.T) {
	text := `Great, I can send that. [[SUBMIT_INQUIRY: {"name":"Ana"]] Let me know!`
	display, pending := Extract(text)

	assert.Nil(t, pending)
	assert.NotContains(t, display, "SUBMIT_INQUIRY")
	assert.Contains(t, display, "Great, I can send that.")
	assert.Contains(t, display, "Let me know!")
}

func TestExtractUnclosedMarkerDropsTail(t *testing.T) {
	display, pending := Extract(`Sure! [[SUBMIT_INQUIRY: {"name":"Ana"`)

	assert.Nil(t, pending)
	assert.Equal(t, "Sure!", display)
}

func TestExtractRejectsMissingName(t *testing.T) {
	display, pending := Extract(`Ok [[SUBMIT_INQUIRY: {"email":"a@b.com"}]]`)

	assert.Nil(t, pending)
	assert.Equal(t, "Ok", display)
}

func TestExtractRejectsBlankName(t *testing.T) {
	_, pending := Extract(`[[SUBMIT_INQUIRY: {"name":"  "}]]`)
	assert.Nil(t, pending)
}

func TestExtractRejectsNonStringField(t *testing.T) {
	_, pending := Extract(`[[SUBMIT_INQUIRY: {"name":"Ana","phone":12345}]]`)
	assert.Nil(t, pending)
}

func TestExtractToleratesNullOptionalField(t *testing.T) {
	_, pending := Extract(`[[SUBMIT_INQUIRY: {"name":"Ana","eventDate":null}]]`)

	require.NotNil(t, pending)
	assert.Empty(t, pending.Inquiry.EventDate)
}

func TestIntakeSubmitSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"message":"Success"}`))
	}))
	defer srv.Close()

	c := NewIntakeClient(srv.URL)
	err := c.Submit(context.Background(), models.Inquiry{Name: "Ana", Email: "a@b.com", EventType: "wedding"})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIntakeSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewIntakeClient(srv.URL)
	err := c.Submit(context.Background(), models.Inquiry{Name: "Ana"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
