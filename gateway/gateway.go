// Package gateway runs the ordered model cascade. It tries each candidate
// in turn and returns the first non-empty completion; when every candidate
// has failed it degrades to a localized overload message instead of raising
// an error, so the conversation stays alive.
package gateway

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/providers"
)

// Candidate is one (provider, model) pair. Order in the candidate list is
// preference order: cheapest and most available first.
type Candidate struct {
	Provider string
	Model    string
}

// Result is what the gateway hands back. Overloaded marks the degraded
// all-candidates-failed reply; Model names the candidate that answered.
type Result struct {
	Text       string
	Model      string
	Overloaded bool
}

type Gateway struct {
	adapters   map[string]providers.Adapter
	candidates []Candidate
}

func New(adapters []providers.Adapter, candidates []Candidate) *Gateway {
	byName := make(map[string]providers.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Gateway{adapters: byName, candidates: candidates}
}

// Configured reports whether at least one candidate has a usable adapter.
// False means the service is missing provider credentials.
func (g *Gateway) Configured() bool {
	for _, c := range g.candidates {
		if _, ok := g.adapters[c.Provider]; ok {
			return true
		}
	}
	return false
}

// Complete walks the candidate list strictly in order and stops at the
// first success. Every failure advances, regardless of class: a fatal
// error on one model (bad quota, retired model id) says nothing about the
// next candidate. The class only picks the log level.
func (g *Gateway) Complete(ctx context.Context, artifact prompt.Artifact) Result {
	for _, c := range g.candidates {
		adapter, ok := g.adapters[c.Provider]
		if !ok {
			log.Warn().Str("provider", c.Provider).Str("model", c.Model).
				Msg("skipping candidate without configured adapter")
			continue
		}

		text, err := adapter.Invoke(ctx, artifact, c.Model)
		if err == nil {
			log.Debug().Str("provider", c.Provider).Str("model", c.Model).
				Msg("candidate answered")
			return Result{Text: text, Model: c.Model}
		}

		f := providers.AsFailure(err)
		evt := log.Warn()
		if f.Class == providers.Fatal {
			evt = log.Error()
		}
		evt.Str("provider", c.Provider).Str("model", c.Model).
			Int("status", f.Status).Str("class", f.Class.String()).
			Msg("candidate failed, advancing")
	}

	log.Error().Int("candidates", len(g.candidates)).Msg("all model candidates exhausted")
	return Result{Text: overloadMessage(artifact.Language), Overloaded: true}
}
