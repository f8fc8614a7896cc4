// Package main implements the Roamly API server: a question-answering
// endpoint grounded on the attraction corpus in the vector store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/rag"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
	"github.com/RoamlyAI/roamly-mvp/pkg/hfembed"
	"github.com/RoamlyAI/roamly-mvp/pkg/llm"
	"github.com/RoamlyAI/roamly-mvp/pkg/metrics"
	"github.com/RoamlyAI/roamly-mvp/pkg/mid"
	"github.com/RoamlyAI/roamly-mvp/pkg/resilience"
)

var met = metrics.New()

var (
	mAsksTotal   = met.Counter("roamly_asks_total", "Total /api/ask requests accepted")
	mAskDuration = met.Histogram("roamly_ask_duration_seconds", "End-to-end ask latency", nil)
	mEmptyAnswer = met.Counter("roamly_empty_answers_total", "Asks that produced an empty answer")

	mAskErrors = map[domain.ErrKind]*metrics.Counter{
		domain.ErrKindConfig:     askErrorCounter(domain.ErrKindConfig),
		domain.ErrKindRetrieval:  askErrorCounter(domain.ErrKindRetrieval),
		domain.ErrKindGeneration: askErrorCounter(domain.ErrKindGeneration),
		domain.ErrKindUnknown:    askErrorCounter(domain.ErrKindUnknown),
	}
)

func askErrorCounter(kind domain.ErrKind) *metrics.Counter {
	return met.Counter(metrics.WithLabels("roamly_ask_errors_total", "kind", kind.String()), "Failed asks by error kind")
}

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	QdrantURL    string
	Collection   string
	HFBaseURL    string
	HFToken      string
	EmbedModel   string
	OpenAIKey    string
	OpenAIBase   string
	ChatModel    string
	TemplatePath string
	CORSOrigin   string
	RatePerSec   float64
	RateBurst    int
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "attractions"),
		HFBaseURL:    envOr("HF_BASE_URL", hfembed.DefaultBaseURL),
		HFToken:      os.Getenv("HF_TOKEN"),
		EmbedModel:   envOr("EMBED_MODEL", hfembed.DefaultModel),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBase:   os.Getenv("OPENAI_BASE_URL"),
		ChatModel:    envOr("CHAT_MODEL", llm.DefaultModel),
		TemplatePath: envOr("ROAMLY_PROMPT_PATH", "rag_prompt.tmpl"),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		RatePerSec:   envFloat("RATE_PER_SEC", 10),
		RateBurst:    envInt("RATE_BURST", 20),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Provider clients, constructed once and shared ---
	embedder := hfembed.New(cfg.HFBaseURL, cfg.EmbedModel, cfg.HFToken)
	generator := llm.New(llm.Config{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBase,
		Model:   cfg.ChatModel,
	})

	// --- Build RAG service ---
	opts := rag.DefaultOptions()
	opts.TemplatePath = cfg.TemplatePath
	ragSvc, err := rag.New(embedder, vectorStore, generator, opts, logger)
	if err != nil {
		return fmt.Errorf("rag service: %w", err)
	}

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/ask", handleAsk(ragSvc, logger))
	mux.Handle("GET /metrics", met.Handler())

	limiter := resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RatePerSec, Burst: cfg.RateBurst})
	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(limiter),
		mid.OTel("roamly-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// AskRequest is the JSON body for POST /api/ask.
type AskRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n,omitempty"`
}

// AskResponse is the JSON response for POST /api/ask.
type AskResponse struct {
	Answer  string       `json:"answer"`
	Sources []rag.Source `json:"sources,omitempty"`
}

func handleAsk(ragSvc *rag.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if err := domain.ValidateAsk(req.Query, req.TopN); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}
		topN := req.TopN
		if topN == 0 {
			topN = domain.DefaultTopN
		}

		mAsksTotal.Inc()
		start := time.Now()

		answer, err := ragSvc.Answer(r.Context(), req.Query, topN)
		mAskDuration.Since(start)
		if err != nil {
			kind := domain.KindOf(err)
			mAskErrors[kind].Inc()
			logger.Error("ask failed", "kind", kind.String(), "err", err)

			// Configuration defects get an actionable message; transient
			// provider failures stay generic so internals never leak.
			if kind == domain.ErrKindConfig {
				http.Error(w, `{"error":"service is misconfigured; contact the operator"}`, http.StatusInternalServerError)
				return
			}
			http.Error(w, `{"error":"an error occurred while generating an answer, please try again later"}`, http.StatusInternalServerError)
			return
		}

		if answer.Text == "" {
			mEmptyAnswer.Inc()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AskResponse{
			Answer:  answer.Text,
			Sources: answer.Sources,
		})
	}
}
