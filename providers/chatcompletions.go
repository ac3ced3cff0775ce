package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

// ChatCompletions speaks the OpenAI-compatible chat completions API:
// bearer-token auth, native message array with the system directive as the
// first message. Works against OpenAI itself and the usual compatible
// endpoints (OpenRouter, Groq, local runtimes).
type ChatCompletions struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewChatCompletions(apiKey, baseURL string) *ChatCompletions {
	return &ChatCompletions{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

func (c *ChatCompletions) Name() string { return "chat-completions" }

type chatCompletionsRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ChatCompletions) Invoke(ctx context.Context, artifact prompt.Artifact, model string) (string, error) {
	body, err := json.Marshal(chatCompletionsRequest{
		Model:       model,
		Messages:    artifact.Chat(),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat completions request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create chat completions request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call chat completions")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read chat completions response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Failure{
			Provider: c.Name(),
			Model:    model,
			Class:    ClassifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Detail:   string(respBody),
		}
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, "unmarshal chat completions response")
	}

	text := ""
	if len(parsed.Choices) > 0 {
		text = parsed.Choices[0].Message.Content
	}
	if text == "" {
		return "", &Failure{
			Provider: c.Name(),
			Model:    model,
			Class:    Retryable,
			Detail:   "response contained no generated text",
		}
	}
	return text, nil
}
