// Package providers holds one adapter per model backend. An adapter
// translates the normalized prompt artifact into the provider's wire format,
// performs a single bounded call and classifies the outcome so the gateway
// can decide whether advancing to the next candidate is expected or not.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

// attemptTimeout bounds one provider call. The client side enforces ~15s
// end-to-end, so a single attempt must never take longer than that.
const attemptTimeout = 15 * time.Second

// Adapter is the normalized surface the gateway calls. Invoke returns the
// first generated text of the response, or a *Failure (never a panic, never
// a raw transport error type the gateway would have to know about).
type Adapter interface {
	Name() string
	Invoke(ctx context.Context, artifact prompt.Artifact, model string) (string, error)
}

// Class says whether a failed attempt was an expected transient or not.
// The gateway advances to the next candidate either way; the class only
// decides how loudly the attempt is logged.
type Class int

const (
	Retryable Class = iota
	Fatal
)

func (c Class) String() string {
	if c == Retryable {
		return "retryable"
	}
	return "fatal"
}

// ClassifyStatus maps a non-2xx HTTP status onto a failure class.
// 429 and 503 are quota/pressure signals the next candidate may not share.
func ClassifyStatus(status int) Class {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return Retryable
	default:
		return Fatal
	}
}

// Failure is the error every adapter returns on a failed attempt.
type Failure struct {
	Provider string
	Model    string
	Class    Class
	Status   int
	Detail   string
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s/%s: %s failure, status %d: %s", f.Provider, f.Model, f.Class, f.Status, f.Detail)
	}
	return fmt.Sprintf("%s/%s: %s failure: %s", f.Provider, f.Model, f.Class, f.Detail)
}

// AsFailure extracts the adapter failure from an error chain. Transport
// errors that never produced a status are normalized to retryable so a
// flaky network hop does not read as a broken candidate list.
func AsFailure(err error) *Failure {
	if f, ok := err.(*Failure); ok {
		return f
	}
	return &Failure{Class: Retryable, Detail: err.Error()}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: attemptTimeout}
}
