package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/rag"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
)

// --- mocks ---

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return m.vec, m.err
}

type mockSearcher struct {
	results []semantic.SearchResult
	err     error
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, _ int) ([]semantic.SearchResult, error) {
	return m.results, m.err
}

type mockGenerator struct {
	reply string
	err   error
}

func (m *mockGenerator) Complete(_ context.Context, _ string) (string, error) {
	return m.reply, m.err
}

func testService(t *testing.T, embed rag.Embedder, search rag.Searcher, gen rag.Generator) *rag.Service {
	t.Helper()
	opts := rag.DefaultOptions()
	opts.TemplatePath = ""
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := rag.New(embed, search, gen, opts, logger)
	if err != nil {
		t.Fatalf("rag.New: %v", err)
	}
	return svc
}

func askHandler(t *testing.T, embed rag.Embedder, search rag.Searcher, gen rag.Generator) http.HandlerFunc {
	t.Helper()
	return handleAsk(testService(t, embed, search, gen), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postAsk(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ask", bytes.NewBufferString(body))
	handler(rec, req)
	return rec
}

// --- tests ---

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestAskEndpoint_Success(t *testing.T) {
	score := 0.9
	handler := askHandler(t,
		&mockEmbedder{vec: []float32{0.1}},
		&mockSearcher{results: []semantic.SearchResult{{
			ID: "a-1",
			Fields: map[string]any{
				"id":              "a-1",
				"attraction_name": "Eiffel Tower",
				"city_name":       "Paris",
				"similarity":      score,
			},
		}}},
		&mockGenerator{reply: "Visit the Eiffel Tower."},
	)

	rec := postAsk(handler, `{"query":"what to see in Paris?","top_n":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "Visit the Eiffel Tower." {
		t.Errorf("wrong answer: %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].ID != "a-1" {
		t.Errorf("wrong sources: %+v", resp.Sources)
	}
}

func TestAskEndpoint_InvalidJSON(t *testing.T) {
	handler := askHandler(t, &mockEmbedder{}, &mockSearcher{}, &mockGenerator{})
	if rec := postAsk(handler, "not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskEndpoint_EmptyQuery(t *testing.T) {
	handler := askHandler(t, &mockEmbedder{}, &mockSearcher{}, &mockGenerator{})
	if rec := postAsk(handler, `{"query":"  "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskEndpoint_TopNOutOfRange(t *testing.T) {
	handler := askHandler(t, &mockEmbedder{}, &mockSearcher{}, &mockGenerator{})
	for _, body := range []string{
		`{"query":"q","top_n":-1}`,
		fmt.Sprintf(`{"query":"q","top_n":%d}`, domain.MaxTopN+1),
	} {
		if rec := postAsk(handler, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestAskEndpoint_DefaultTopN(t *testing.T) {
	handler := askHandler(t, &mockEmbedder{vec: []float32{0.1}}, &mockSearcher{}, &mockGenerator{reply: "ok"})
	if rec := postAsk(handler, `{"query":"q"}`); rec.Code != http.StatusOK {
		t.Fatalf("omitted top_n must use the default, got %d", rec.Code)
	}
}

func TestAskEndpoint_ConfigErrorIsActionable(t *testing.T) {
	handler := askHandler(t,
		&mockEmbedder{err: domain.ConfigErrorf("hfembed: HF_TOKEN is not set")},
		&mockSearcher{}, &mockGenerator{},
	)

	rec := postAsk(handler, `{"query":"q"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "misconfigured") {
		t.Errorf("config failure must get the operator message: %s", rec.Body.String())
	}
}

func TestAskEndpoint_ProviderErrorStaysGeneric(t *testing.T) {
	handler := askHandler(t,
		&mockEmbedder{vec: []float32{0.1}},
		&mockSearcher{err: fmt.Errorf("qdrant: connection refused to 10.0.0.5")},
		&mockGenerator{},
	)

	rec := postAsk(handler, `{"query":"q"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "10.0.0.5") || strings.Contains(body, "qdrant") {
		t.Errorf("provider internals leaked: %s", body)
	}
	if !strings.Contains(body, "try again later") {
		t.Errorf("expected the generic message: %s", body)
	}
}

func TestAskErrorCounters(t *testing.T) {
	handler := askHandler(t,
		&mockEmbedder{err: domain.ConfigErrorf("hfembed: HF_TOKEN is not set")},
		&mockSearcher{}, &mockGenerator{},
	)

	before := mAskErrors[domain.ErrKindConfig].Value()
	postAsk(handler, `{"query":"q"}`)
	if got := mAskErrors[domain.ErrKindConfig].Value(); got != before+1 {
		t.Errorf("config counter = %d, want %d", got, before+1)
	}

	rendered := met.Render()
	if !strings.Contains(rendered, `roamly_ask_errors_total{kind="configuration"}`) {
		t.Errorf("labeled error counter missing from exposition:\n%s", rendered)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Collection != "attractions" {
		t.Fatalf("expected default collection, got %s", cfg.Collection)
	}
	if cfg.CORSOrigin != "*" {
		t.Fatalf("expected default CORS *, got %s", cfg.CORSOrigin)
	}
	if cfg.RatePerSec != 10 || cfg.RateBurst != 20 {
		t.Fatalf("unexpected rate defaults: %v %v", cfg.RatePerSec, cfg.RateBurst)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ROAMLY_TEST_STR", "value")
	t.Setenv("ROAMLY_TEST_FLOAT", "2.5")
	t.Setenv("ROAMLY_TEST_INT", "bogus")

	if got := envOr("ROAMLY_TEST_STR", "d"); got != "value" {
		t.Errorf("envOr = %q", got)
	}
	if got := envOr("ROAMLY_TEST_UNSET", "d"); got != "d" {
		t.Errorf("envOr fallback = %q", got)
	}
	if got := envFloat("ROAMLY_TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("envFloat = %v", got)
	}
	if got := envInt("ROAMLY_TEST_INT", 7); got != 7 {
		t.Errorf("envInt must fall back on parse failure, got %d", got)
	}
}
