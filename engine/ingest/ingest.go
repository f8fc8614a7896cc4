// Package ingest provides the ingestion pipeline that loads attraction
// records through validation, embedding, and vector-store upsert stages.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/rag"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
	"github.com/RoamlyAI/roamly-mvp/pkg/fn"
	"github.com/RoamlyAI/roamly-mvp/pkg/natsutil"
	"github.com/RoamlyAI/roamly-mvp/pkg/resilience"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"
)

const (
	// IngestSubject is the NATS subject for incoming attraction records.
	IngestSubject = "roamly.ingest"
	// DLQSubject is the dead letter queue subject for failed records.
	DLQSubject = "roamly.ingest.dlq"
	// MaxRetries before a record is sent to the DLQ.
	MaxRetries = 3
)

// Deps holds the external dependencies for the ingestion pipeline.
type Deps struct {
	Embedder    rag.Embedder
	VectorStore *semantic.VectorStore
	// EmbedLimit caps the embedding request rate against the provider.
	// Nil means unlimited.
	EmbedLimit *rate.Limiter
	// Breaker trips after repeated embedding failures so a provider outage
	// doesn't burn the whole batch. Nil disables it.
	Breaker *resilience.Breaker
	Logger  *slog.Logger
}

// EmbeddedRow is a validated row with its computed embedding.
type EmbeddedRow struct {
	Row       domain.AttractionRow
	Embedding []float32
}

// Validate rejects rows missing their identity fields.
var Validate fn.Stage[domain.AttractionRow, domain.AttractionRow] = func(_ context.Context, row domain.AttractionRow) fn.Result[domain.AttractionRow] {
	if err := domain.ValidateRow(row); err != nil {
		return fn.Err[domain.AttractionRow](fmt.Errorf("validate %q: %w", row.Name, err))
	}
	return fn.Ok(row)
}

// NewEmbed creates the embedding stage. Calls go through the rate limiter
// and circuit breaker, with backoff retries; this is ETL-side tolerance and
// deliberately absent from the query path.
func NewEmbed(deps Deps) fn.Stage[domain.AttractionRow, EmbeddedRow] {
	return func(ctx context.Context, row domain.AttractionRow) fn.Result[EmbeddedRow] {
		if deps.EmbedLimit != nil {
			if err := deps.EmbedLimit.Wait(ctx); err != nil {
				return fn.Err[EmbeddedRow](err)
			}
		}

		embedOnce := func(ctx context.Context) fn.Result[[]float32] {
			return fn.FromPair(deps.Embedder.Embed(ctx, row.EmbedText()))
		}
		call := embedOnce
		if deps.Breaker != nil {
			call = func(ctx context.Context) fn.Result[[]float32] {
				return resilience.CallResult(deps.Breaker, ctx, embedOnce)
			}
		}

		result := fn.Retry(ctx, fn.DefaultRetry, call)
		vec, err := result.Unwrap()
		if err != nil {
			return fn.Err[EmbeddedRow](fmt.Errorf("embed %q: %w", row.Name, err))
		}
		return fn.Ok(EmbeddedRow{Row: row, Embedding: vec})
	}
}

// PointID derives the deterministic point UUID for a row, so re-ingesting
// the same record overwrites rather than duplicates.
func PointID(row domain.AttractionRow) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("roamly:attraction:"+row.ID)).String()
}

// NewStore creates the vector-store upsert stage.
func NewStore(vs *semantic.VectorStore) fn.Stage[EmbeddedRow, string] {
	return func(ctx context.Context, er EmbeddedRow) fn.Result[string] {
		record := semantic.VectorRecord{
			ID:        PointID(er.Row),
			Embedding: er.Embedding,
			Payload:   er.Row.Payload(),
		}
		if err := vs.Upsert(ctx, []semantic.VectorRecord{record}); err != nil {
			return fn.Err[string](fmt.Errorf("vector upsert: %w", err))
		}
		return fn.Ok(er.Row.ID)
	}
}

// LoggedTap returns a pass-through stage that logs traversal at debug level.
func LoggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return fn.TapStage(func(_ context.Context, _ T) {
		log.Debug("stage", "name", name)
	})
}

// NewPipeline constructs the full ingestion pipeline. Each stage runs inside
// its own trace span.
func NewPipeline(deps Deps) fn.Stage[domain.AttractionRow, string] {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	validate := fn.TracedStage("ingest.validate",
		fn.Pipeline(LoggedTap[domain.AttractionRow]("validate", log), Validate))
	embed := fn.TracedStage("ingest.embed",
		fn.Then(LoggedTap[domain.AttractionRow]("embed", log), NewEmbed(deps)))
	store := fn.TracedStage("ingest.store",
		fn.Then(LoggedTap[EmbeddedRow]("store", log), NewStore(deps.VectorStore)))

	return fn.Then(fn.Then(validate, embed), store)
}

// dlqMessage is published to the DLQ on repeated failure.
type dlqMessage struct {
	Row     domain.AttractionRow `json:"row"`
	Error   string               `json:"error"`
	Retries int                  `json:"retries"`
}

// consumer runs incoming records through the pipeline with a DLQ fallback.
type consumer struct {
	pipeline fn.Stage[domain.AttractionRow, string]
	toDLQ    func(ctx context.Context, msg dlqMessage) error
	log      *slog.Logger
}

// handle gives a record up to MaxRetries whole pipeline passes before moving
// it to the DLQ. The embed stage retries internally on top of this, so a
// record hitting a persistent provider failure costs MaxRetries times the
// embed attempts before it lands in the queue.
func (c *consumer) handle(ctx context.Context, row domain.AttractionRow) {
	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if _, err := c.pipeline(ctx, row).Unwrap(); err != nil {
			lastErr = err
			c.log.Warn("ingest: pipeline failed", "attempt", attempt, "id", row.ID, "error", err)
			continue
		}
		c.log.Info("ingest: stored", "id", row.ID, "name", row.Name)
		return
	}

	msg := dlqMessage{Row: row, Error: lastErr.Error(), Retries: MaxRetries}
	if err := c.toDLQ(ctx, msg); err != nil {
		c.log.Error("ingest: dlq publish failed", "id", row.ID, "error", err)
		return
	}
	c.log.Error("ingest: moved to dlq", "id", row.ID, "error", lastErr)
}

// StartConsumer subscribes to the ingest subject and feeds incoming records
// to the pipeline. Trace context travels in the message headers both on the
// way in and on the DLQ hop.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &consumer{
		pipeline: NewPipeline(deps),
		toDLQ: func(ctx context.Context, msg dlqMessage) error {
			return natsutil.Publish(ctx, nc, DLQSubject, msg)
		},
		log: log,
	}
	return natsutil.Subscribe(nc, IngestSubject, c.handle)
}
