package inquiry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

const intakeTimeout = 15 * time.Second

// IntakeClient talks to the external lead-intake collaborator, which owns
// persistence and owner notification. The core only needs success or
// failure back.
type IntakeClient struct {
	url        string
	httpClient *http.Client
}

func NewIntakeClient(url string) *IntakeClient {
	return &IntakeClient{
		url:        url,
		httpClient: &http.Client{Timeout: intakeTimeout},
	}
}

// Submit posts one confirmed inquiry. Any non-2xx status is a failure.
func (c *IntakeClient) Submit(ctx context.Context, inq models.Inquiry) error {
	body, err := json.Marshal(inq)
	if err != nil {
		return errors.Wrap(err, "marshal inquiry")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create intake request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "call intake")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("intake returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
