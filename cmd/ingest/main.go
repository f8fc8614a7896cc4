// Command ingest loads attraction records into the vector store, either from
// a CSV file or by consuming the roamly.ingest NATS subject.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/ingest"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
	"github.com/RoamlyAI/roamly-mvp/pkg/fn"
	"github.com/RoamlyAI/roamly-mvp/pkg/hfembed"
	"github.com/RoamlyAI/roamly-mvp/pkg/metrics"
	"github.com/RoamlyAI/roamly-mvp/pkg/resilience"
	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"
)

var met = metrics.New()

var (
	mRowsTotal   = met.Counter("roamly_ingest_rows_total", "Rows accepted into the pipeline")
	mRowsStored  = met.Counter("roamly_ingest_rows_stored_total", "Rows stored in the vector store")
	mRowsFailed  = met.Counter("roamly_ingest_rows_failed_total", "Rows that failed the pipeline")
	mRowsSkipped = met.Counter("roamly_ingest_rows_skipped_total", "CSV rows skipped during parsing")
	mPipelineDur = met.Histogram("roamly_ingest_pipeline_duration_seconds", "Per-row pipeline time", nil)
)

// vectorDims matches the embedding model (bge-small-en-v1.5).
const vectorDims = 384

func main() {
	var (
		csvPath     = flag.String("csv", "", "attractions CSV to load; empty means NATS consumer mode")
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL (consumer mode)")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "attractions", "Qdrant collection name")
		hfBase      = flag.String("hf-base", hfembed.DefaultBaseURL, "Hugging Face inference base URL")
		embedModel  = flag.String("model", hfembed.DefaultModel, "embedding model")
		embedRate   = flag.Float64("embed-rate", 5, "max embedding requests per second")
		workers     = flag.Int("workers", 4, "concurrent rows in CSV mode")
		metricsPort = flag.Int("metrics-port", 9091, "metrics listen port")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		logger.Error("qdrant connect failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx, vectorDims); err != nil {
		logger.Error("ensure collection failed", "err", err)
		os.Exit(1)
	}

	deps := ingest.Deps{
		Embedder:    hfembed.New(*hfBase, *embedModel, os.Getenv("HF_TOKEN")),
		VectorStore: store,
		EmbedLimit:  rate.NewLimiter(rate.Limit(*embedRate), 1),
		Breaker:     resilience.NewBreaker(resilience.DefaultBreakerOpts),
		Logger:      logger,
	}

	if *csvPath != "" {
		if err := loadCSV(ctx, *csvPath, *workers, deps, logger); err != nil {
			logger.Error("csv load failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := consume(ctx, *natsURL, deps, logger); err != nil {
		logger.Error("consumer failed", "err", err)
		os.Exit(1)
	}
}

// loadCSV runs every row of the file through the pipeline with bounded
// concurrency and reports a summary.
func loadCSV(ctx context.Context, path string, workers int, deps ingest.Deps, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, skipped, err := ingest.ReadCSV(f)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.Warn("csv row skipped", "reason", s)
		mRowsSkipped.Inc()
	}
	logger.Info("csv parsed", "rows", len(rows), "skipped", len(skipped))

	pipeline := ingest.NewPipeline(deps)

	results := fn.ParMapResult(rows, workers, func(row domain.AttractionRow) fn.Result[string] {
		mRowsTotal.Inc()
		start := time.Now()
		defer mPipelineDur.Since(start)
		return pipeline(ctx, row)
	})

	stored, failed := 0, 0
	for i, r := range results {
		if _, err := r.Unwrap(); err != nil {
			failed++
			mRowsFailed.Inc()
			logger.Error("row failed", "name", rows[i].Name, "err", err)
			continue
		}
		stored++
		mRowsStored.Inc()
	}

	logger.Info("csv load done", "stored", stored, "failed", failed)
	if failed > 0 && stored == 0 {
		return fmt.Errorf("all %d rows failed", failed)
	}
	return nil
}

// consume subscribes to the ingest subject until interrupted.
func consume(ctx context.Context, natsURL string, deps ingest.Deps, logger *slog.Logger) error {
	nc, err := nats.Connect(natsURL, nats.Name("roamly-ingest"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	sub, err := ingest.StartConsumer(nc, deps)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	logger.Info("ingest consumer running", "subject", ingest.IngestSubject)
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
