package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1"

// Gemini speaks the generateContent REST API: one single-shot call per
// candidate model, API key in the query string, prompt flattened into a
// single text part.
type Gemini struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		httpClient: newHTTPClient(),
	}
}

// NewGeminiWithBaseURL points the adapter at a non-default endpoint.
// Used by tests and proxies.
func NewGeminiWithBaseURL(apiKey, baseURL string) *Gemini {
	g := NewGemini(apiKey)
	g.baseURL = baseURL
	return g
}

func (g *Gemini) Name() string { return "gemini" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Invoke(ctx context.Context, artifact prompt.Artifact, model string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: artifact.Flatten()}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal gemini request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call gemini")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read gemini response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Failure{
			Provider: g.Name(),
			Model:    model,
			Class:    ClassifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Detail:   string(respBody),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, "unmarshal gemini response")
	}

	text := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		text = parsed.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		// Empty completions on a 200 are usually transient filtering or
		// truncation upstream, so the next candidate still gets its turn.
		return "", &Failure{
			Provider: g.Name(),
			Model:    model,
			Class:    Retryable,
			Detail:   "response contained no generated text",
		}
	}
	return text, nil
}
