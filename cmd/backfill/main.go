// Command backfill re-embeds every stored attraction. Run it after changing
// the embedding model: it scrolls the collection, rebuilds each point's
// embedding text from its payload, and upserts the fresh vector in place.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
	"github.com/RoamlyAI/roamly-mvp/pkg/fn"
	"github.com/RoamlyAI/roamly-mvp/pkg/hfembed"
	"golang.org/x/time/rate"
)

func main() {
	var (
		qdrantAddr = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection = flag.String("collection", "attractions", "Qdrant collection name")
		hfBase     = flag.String("hf-base", hfembed.DefaultBaseURL, "Hugging Face inference base URL")
		embedModel = flag.String("model", hfembed.DefaultModel, "embedding model")
		embedRate  = flag.Float64("embed-rate", 5, "max embedding requests per second")
		pageSize   = flag.Int("page", 100, "scroll page size")
		dryRun     = flag.Bool("dry-run", false, "scan and embed without writing")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		logger.Error("qdrant connect failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder := hfembed.New(*hfBase, *embedModel, os.Getenv("HF_TOKEN"))
	limiter := rate.NewLimiter(rate.Limit(*embedRate), 1)

	updated, failed := 0, 0
	offset := ""
	start := time.Now()

	for {
		hits, next, err := store.ScrollPage(ctx, offset, *pageSize)
		if err != nil {
			logger.Error("scroll failed", "err", err)
			os.Exit(1)
		}
		if len(hits) == 0 {
			break
		}

		for _, hit := range hits {
			if ctx.Err() != nil {
				logger.Info("interrupted", "updated", updated, "failed", failed)
				return
			}

			row := rowFromPayload(hit.Fields)
			if row.ID == "" {
				row.ID = hit.ID
			}
			text := row.EmbedText()
			if text == "" {
				logger.Warn("point has no embeddable text", "point", hit.ID)
				failed++
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			result := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[[]float32] {
				return fn.FromPair(embedder.Embed(ctx, text))
			})
			vec, err := result.Unwrap()
			if err != nil {
				logger.Error("re-embed failed", "point", hit.ID, "err", err)
				failed++
				continue
			}

			if *dryRun {
				updated++
				continue
			}

			record := semantic.VectorRecord{ID: hit.ID, Embedding: vec, Payload: hit.Fields}
			if err := store.Upsert(ctx, []semantic.VectorRecord{record}); err != nil {
				logger.Error("upsert failed", "point", hit.ID, "err", err)
				failed++
				continue
			}
			updated++
		}

		if next == "" {
			break
		}
		offset = next
	}

	logger.Info("backfill done", "updated", updated, "failed", failed, "took", time.Since(start))
}

// rowFromPayload rebuilds the ingestion row from a stored payload.
func rowFromPayload(fields map[string]any) domain.AttractionRow {
	a := domain.AttractionFromPayload(fields)
	row := domain.AttractionRow{
		ID:          a.ID,
		Name:        a.Name,
		City:        a.City,
		Type:        a.Type,
		Address:     a.Address,
		Price:       a.Price,
		Currency:    a.Currency,
		OpenHours:   a.OpenHours,
		Description: a.Description,
	}
	if loc, ok := fields["location"].(string); ok {
		row.Location = loc
	}
	return row
}
