// Package domain defines core domain types, errors, and validation for the
// Roamly query pipeline. It acts as the parse-and-validate gate between
// untyped provider payloads and the rest of the engine.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attraction is a single normalized record retrieved from the vector store.
// All descriptive fields are optional; Score is nil when the store reported
// no usable similarity value.
type Attraction struct {
	ID          string   `json:"id"`
	Name        string   `json:"attraction_name,omitempty"`
	City        string   `json:"city_name,omitempty"`
	Type        string   `json:"attraction_type,omitempty"`
	Address     string   `json:"address,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	OpenHours   string   `json:"open_hours,omitempty"`
	Description string   `json:"things_to_do,omitempty"`

	// Score is a similarity in [0,1], higher = more similar. Providers that
	// report it under "distance" are accepted verbatim, never sign-inverted;
	// ordering decisions always trust the store, not this value.
	Score *float64 `json:"similarity,omitempty"`
}

// AttractionFromPayload converts a raw provider payload into an Attraction.
// This is the only place untyped payload handling lives: unknown fields are
// ignored, missing fields stay zero, and a malformed score degrades to nil
// rather than failing the record.
func AttractionFromPayload(payload map[string]any) Attraction {
	a := Attraction{
		ID:          asString(payload["id"]),
		Name:        asString(payload["attraction_name"]),
		City:        asString(payload["city_name"]),
		Type:        asString(payload["attraction_type"]),
		Address:     asString(payload["address"]),
		Currency:    asString(payload["currency"]),
		OpenHours:   asString(payload["open_hours"]),
		Description: asString(payload["things_to_do"]),
	}

	if v, ok := asFloat(payload["price"]); ok {
		a.Price = &v
	}

	// Score field: "similarity" wins, "distance" is the fallback name.
	if v, ok := asFloat(payload["similarity"]); ok {
		a.Score = &v
	} else if v, ok := asFloat(payload["distance"]); ok {
		a.Score = &v
	}

	return a
}

// ContextText renders the attraction for inclusion in a generation prompt.
// Only present fields are emitted, one per line, in a fixed order. An
// attraction with no descriptive fields renders to the empty string.
func (a Attraction) ContextText() string {
	var parts []string

	if a.Name != "" {
		if a.City != "" {
			parts = append(parts, fmt.Sprintf("Attraction: %s in %s", a.Name, a.City))
		} else {
			parts = append(parts, "Attraction: "+a.Name)
		}
	}
	if a.Type != "" {
		parts = append(parts, "Type: "+a.Type)
	}
	if a.Address != "" {
		parts = append(parts, "Address: "+a.Address)
	}
	if a.Price != nil {
		currency := a.Currency
		if currency == "" {
			currency = "USD"
		}
		parts = append(parts, fmt.Sprintf("Price: %s %s", formatPrice(*a.Price), currency))
	}
	if a.OpenHours != "" {
		parts = append(parts, "Opening Hours: "+a.OpenHours)
	}
	if a.Description != "" {
		parts = append(parts, "Description: "+a.Description)
	}

	return strings.Join(parts, "\n")
}

// formatPrice trims trailing zeros so "12.50" renders as 12.5 and "30.00" as 30.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces the numeric shapes a JSON or gRPC payload can carry.
// Anything else reports false.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
