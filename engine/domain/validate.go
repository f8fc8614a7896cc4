package domain

import (
	"errors"
	"strings"
)

// Bounds for the per-request context size.
const (
	MinTopN     = 1
	MaxTopN     = 10
	DefaultTopN = 3
)

var (
	ErrEmptyQuery     = errors.New("query is empty")
	ErrTopNOutOfRange = errors.New("top_n out of range")
)

// ValidateAsk checks the transport-level inputs to the query pipeline.
// A zero topN means "caller accepted the default" and is valid.
func ValidateAsk(query string, topN int) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	if topN != 0 && (topN < MinTopN || topN > MaxTopN) {
		return ErrTopNOutOfRange
	}
	return nil
}

// AttractionRow is one record of the ingestion input, as parsed from CSV or
// received over the ingest subject.
type AttractionRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"attraction_name"`
	City        string   `json:"city_name"`
	Type        string   `json:"attraction_type"`
	Location    string   `json:"location,omitempty"`
	Address     string   `json:"address,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	OpenHours   string   `json:"open_hours,omitempty"`
	Description string   `json:"things_to_do,omitempty"`
}

var (
	ErrRowMissingID   = errors.New("row has no id")
	ErrRowMissingName = errors.New("row has no attraction name")
)

// ValidateRow checks an ingestion row before it enters the pipeline.
func ValidateRow(row AttractionRow) error {
	if strings.TrimSpace(row.ID) == "" {
		return ErrRowMissingID
	}
	if strings.TrimSpace(row.Name) == "" {
		return ErrRowMissingName
	}
	return nil
}

// Attraction converts an ingestion row to the retrieval-side record type so
// both sides share one text rendering.
func (r AttractionRow) Attraction() Attraction {
	return Attraction{
		ID:          r.ID,
		Name:        r.Name,
		City:        r.City,
		Type:        r.Type,
		Address:     r.Address,
		Price:       r.Price,
		Currency:    r.Currency,
		OpenHours:   r.OpenHours,
		Description: r.Description,
	}
}

// EmbedText is the text the stored vector is computed from: the fields that
// carry the attraction's semantic identity. Query embeddings are compared
// against vectors built from exactly this rendering.
func (r AttractionRow) EmbedText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{r.Name, r.Type, r.Location, r.OpenHours} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Payload returns the vector-store payload for the row. Field names match
// what AttractionFromPayload parses back out at query time.
func (r AttractionRow) Payload() map[string]any {
	p := map[string]any{
		"id":              r.ID,
		"attraction_name": r.Name,
		"city_name":       r.City,
		"attraction_type": r.Type,
	}
	if r.Location != "" {
		p["location"] = r.Location
	}
	if r.Address != "" {
		p["address"] = r.Address
	}
	if r.Price != nil {
		p["price"] = *r.Price
	}
	if r.Currency != "" {
		p["currency"] = r.Currency
	}
	if r.OpenHours != "" {
		p["open_hours"] = r.OpenHours
	}
	if r.Description != "" {
		p["things_to_do"] = r.Description
	}
	return p
}
