// Package rag orchestrates the retrieval-augmented-generation pipeline.
// It accepts a user question, embeds it, retrieves similar attractions from
// the vector store, composes a grounded prompt, and calls the generation
// provider for the final answer.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
)

// Embedder converts query text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher abstracts the vector-store similarity search. Results arrive
// already ordered by descending relevance.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]semantic.SearchResult, error)
}

// Generator produces the final answer text for a composed prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configures the pipeline behaviour.
type Options struct {
	// TopN is the default context size when the caller does not choose one.
	TopN int
	// OverfetchFloor is the minimum number of candidates requested from the
	// store, so retrieval always over-fetches relative to what will be used.
	OverfetchFloor int
	// TemplatePath is the prompt template override file. A missing or
	// unreadable file falls back to the built-in template.
	TemplatePath string
}

// DefaultOptions returns sensible defaults. The over-fetch floor matches the
// largest top_n the API accepts.
func DefaultOptions() Options {
	return Options{
		TopN:           domain.DefaultTopN,
		OverfetchFloor: 10,
		TemplatePath:   "rag_prompt.tmpl",
	}
}

// Service is the RAG orchestration service. It holds no per-request state;
// concurrent Answer calls are independent.
type Service struct {
	embed    Embedder
	search   Searcher
	generate Generator
	opts     Options
	tmpl     *promptTemplate
	logger   *slog.Logger
}

// New creates a RAG Service. It fails only when the template override file
// exists but cannot be parsed, which is an operator-fixable defect.
func New(embed Embedder, search Searcher, generate Generator, opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN <= 0 {
		opts.TopN = domain.DefaultTopN
	}
	if opts.OverfetchFloor <= 0 {
		opts.OverfetchFloor = DefaultOptions().OverfetchFloor
	}

	tmpl, err := loadTemplate(opts.TemplatePath, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		embed:    embed,
		search:   search,
		generate: generate,
		opts:     opts,
		tmpl:     tmpl,
		logger:   logger,
	}, nil
}

// Answer is the structured response of one pipeline pass.
type Answer struct {
	// Text is the generation provider's answer, verbatim. Empty is valid.
	Text string `json:"text"`
	// Sources lists the context records the prompt was grounded on.
	Sources []Source `json:"sources"`
}

// Source is one context record that backed the answer.
type Source struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	City  string   `json:"city,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Answer runs the full pipeline for one question. topN bounds the context
// size; non-positive values produce an empty context but still generate.
// The pass is strictly linear with no retries; a failure in embedding,
// retrieval, or generation terminates it with its classification preserved.
func (s *Service) Answer(ctx context.Context, query string, topN int) (*Answer, error) {
	s.logger.Info("rag answer start", "query_len", len(query), "top_n", topN)

	// 1. Embed the query.
	embedding, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, asRetrieval(fmt.Errorf("rag: embed query: %w", err))
	}

	// 2. Retrieve candidates, over-fetching past topN.
	limit := topN
	if limit < s.opts.OverfetchFloor {
		limit = s.opts.OverfetchFloor
	}
	hits, err := s.search.Search(ctx, embedding, limit)
	if err != nil {
		return nil, asRetrieval(fmt.Errorf("rag: search: %w", err))
	}
	s.logger.Info("rag search done", "hits", len(hits))

	// 3. Normalize and select. The store already ranks by descending
	// relevance; topSlice trusts that order and only slices it.
	records := normalize(hits)
	selected := topSlice(records, topN)

	// 4. Render context, skipping records that contribute nothing.
	var contexts []contextRecord
	var sources []Source
	for _, a := range selected {
		if a.ID == "" {
			continue
		}
		text := a.ContextText()
		if text == "" {
			continue
		}
		contexts = append(contexts, contextRecord{ID: a.ID, Text: text})
		sources = append(sources, Source{ID: a.ID, Name: a.Name, City: a.City, Score: a.Score})
	}

	// 5. Compose the prompt and generate.
	prompt, err := s.tmpl.compose(query, contexts)
	if err != nil {
		return nil, err
	}

	text, err := s.generate.Complete(ctx, prompt)
	if err != nil {
		return nil, asGeneration(fmt.Errorf("rag: generate: %w", err))
	}

	return &Answer{Text: text, Sources: sources}, nil
}

// normalize converts raw search hits into typed records. A hit whose payload
// carries no id falls back to the point id.
func normalize(hits []semantic.SearchResult) []domain.Attraction {
	records := make([]domain.Attraction, len(hits))
	for i, hit := range hits {
		a := domain.AttractionFromPayload(hit.Fields)
		if a.ID == "" {
			a.ID = hit.ID
		}
		records[i] = a
	}
	return records
}

// topSlice returns the first min(n, len(records)) records in input order.
// It never re-ranks: the store's ordering is the ranking.
func topSlice(records []domain.Attraction, n int) []domain.Attraction {
	if n <= 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}

// asRetrieval classifies err as a retrieval failure unless the cause already
// carries a classification (a missing credential stays a config error).
func asRetrieval(err error) error {
	if domain.KindOf(err) != domain.ErrKindUnknown {
		return err
	}
	return domain.RetrievalError(err)
}

func asGeneration(err error) error {
	if domain.KindOf(err) != domain.ErrKindUnknown {
		return err
	}
	return domain.GenerationError(err)
}
