// Package config builds the immutable service configuration from the
// process environment, once, at startup. Nothing mutates it afterwards.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Port string

	// Provider credentials. GoogleAPIKey enables the Gemini cascade;
	// ChatAPIKey+ChatBaseURL enable the chat-completions fallback provider.
	GoogleAPIKey string
	ChatAPIKey   string
	ChatBaseURL  string

	// Candidates is the ordered model cascade, "provider/model" entries.
	Candidates []CandidateRef

	// IntakeURL is the external lead-intake collaborator endpoint.
	IntakeURL string

	RedisURL       string
	AllowedOrigins []string
}

// CandidateRef names one cascade entry before adapter resolution.
type CandidateRef struct {
	Provider string
	Model    string
}

// defaultCascade mirrors the production preference order: flash variants
// first (cheapest, most available), pro variants next, legacy last.
var defaultCascade = []CandidateRef{
	{"gemini", "gemini-1.5-flash-latest"},
	{"gemini", "gemini-1.5-flash"},
	{"gemini", "gemini-1.5-flash-001"},
	{"gemini", "gemini-1.5-flash-002"},
	{"gemini", "gemini-1.5-pro"},
	{"gemini", "gemini-1.5-pro-001"},
	{"gemini", "gemini-1.5-pro-002"},
	{"gemini", "gemini-pro"},
}

// FromEnv reads the environment into a Config. Only malformed values
// error; missing credentials are surfaced later as a 500 on /chat, the way
// the upstream functions behave.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		ChatAPIKey:   os.Getenv("CHAT_API_KEY"),
		ChatBaseURL:  getenv("CHAT_BASE_URL", "https://api.openai.com/v1"),
		IntakeURL:    os.Getenv("INTAKE_URL"),
		RedisURL:     getenv("REDIS_URL", "redis://localhost:6379"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	cascade, err := parseCascade(os.Getenv("MODEL_CASCADE"))
	if err != nil {
		return nil, err
	}
	cfg.Candidates = cascade
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = defaultCascade
		if cfg.ChatAPIKey != "" {
			// The chat-completions provider backs up the Gemini cascade
			// when configured.
			cfg.Candidates = append(cfg.Candidates, CandidateRef{"chat-completions", getenv("CHAT_MODEL", "gpt-4o-mini")})
		}
	}

	return cfg, nil
}

// parseCascade reads MODEL_CASCADE, a comma-separated list of
// provider/model pairs, e.g. "gemini/gemini-1.5-flash,chat-completions/gpt-4o-mini".
func parseCascade(raw string) ([]CandidateRef, error) {
	if raw == "" {
		return nil, nil
	}
	var out []CandidateRef
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		provider, model, ok := strings.Cut(entry, "/")
		if !ok || provider == "" || model == "" {
			return nil, errors.Errorf("invalid MODEL_CASCADE entry %q, want provider/model", entry)
		}
		out = append(out, CandidateRef{Provider: provider, Model: model})
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
