// Package hfembed computes text embeddings via the Hugging Face Inference
// API feature-extraction endpoint.
package hfembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
)

const (
	// DefaultBaseURL is the hf-inference provider route.
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"
	// DefaultModel matches the model the corpus was embedded with. Changing
	// it requires re-embedding every stored point (see cmd/backfill).
	DefaultModel = "BAAI/bge-small-en-v1.5"
)

// Client calls the feature-extraction endpoint for a single model. It is
// safe for concurrent use; construct one per process and share it.
type Client struct {
	baseURL string
	model   string
	token   string
	client  *http.Client
}

// New creates an embedding client. An empty token is accepted here and
// reported as a configuration error on first use, so callers can wire the
// pipeline before credentials are checked.
func New(baseURL, model, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		token:   token,
		client:  &http.Client{},
	}
}

type embedRequest struct {
	Inputs string `json:"inputs"`
}

// Embed returns the embedding vector for text. The provider may answer with
// a flat vector or a one-row batch; only the first row of a batch is used,
// never an average of rows.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.token == "" {
		return nil, domain.ConfigErrorf("hfembed: HF_TOKEN is not set")
	}

	body, _ := json.Marshal(embedRequest{Inputs: text})
	url := fmt.Sprintf("%s/%s/pipeline/feature-extraction", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.RetrievalError(fmt.Errorf("hfembed: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.RetrievalError(fmt.Errorf("hfembed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.RetrievalErrorf("hfembed: status %d: %s", resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.RetrievalError(fmt.Errorf("hfembed: read response: %w", err))
	}

	vec, err := decodeVector(raw)
	if err != nil {
		return nil, domain.RetrievalError(err)
	}
	return vec, nil
}

// decodeVector accepts []float64 and [][]float64 response shapes.
func decodeVector(raw []byte) ([]float32, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return toFloat32(flat), nil
	}

	var batch [][]float64
	if err := json.Unmarshal(raw, &batch); err == nil {
		if len(batch) == 0 {
			return nil, fmt.Errorf("hfembed: empty batch response")
		}
		return toFloat32(batch[0]), nil
	}

	return nil, fmt.Errorf("hfembed: unexpected response shape")
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
