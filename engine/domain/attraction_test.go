package domain

import (
	"strings"
	"testing"
)

func TestAttractionFromPayload(t *testing.T) {
	a := AttractionFromPayload(map[string]any{
		"id":              "a-1",
		"attraction_name": "Eiffel Tower",
		"city_name":       "Paris",
		"attraction_type": "landmark",
		"address":         "Champ de Mars, Paris",
		"price":           28.3,
		"currency":        "EUR",
		"open_hours":      "Daily: 9:00-23:00",
		"things_to_do":    "Climb to the top for panoramic views.",
		"similarity":      0.91,
	})

	if a.ID != "a-1" || a.Name != "Eiffel Tower" || a.City != "Paris" {
		t.Errorf("identity fields wrong: %+v", a)
	}
	if a.Price == nil || *a.Price != 28.3 {
		t.Errorf("price wrong: %+v", a.Price)
	}
	if a.Score == nil || *a.Score != 0.91 {
		t.Errorf("score wrong: %+v", a.Score)
	}
}

func TestAttractionFromPayload_DistanceFallback(t *testing.T) {
	a := AttractionFromPayload(map[string]any{
		"id":       "a-1",
		"distance": 0.3,
	})
	// A provider reporting "distance" is taken verbatim as the similarity:
	// the value is never sign-inverted or rescaled.
	if a.Score == nil || *a.Score != 0.3 {
		t.Errorf("expected score 0.3, got %+v", a.Score)
	}

	a = AttractionFromPayload(map[string]any{
		"similarity": 0.9,
		"distance":   0.1,
	})
	if a.Score == nil || *a.Score != 0.9 {
		t.Errorf("similarity must win over distance, got %+v", a.Score)
	}
}

func TestAttractionFromPayload_Degraded(t *testing.T) {
	a := AttractionFromPayload(map[string]any{
		"attraction_name": "Tivoli Gardens",
		"similarity":      "not-a-number",
		"price":           []any{1, 2},
		"unknown_field":   true,
	})
	if a.Score != nil {
		t.Errorf("malformed score must degrade to nil, got %v", *a.Score)
	}
	if a.Price != nil {
		t.Errorf("malformed price must degrade to nil, got %v", *a.Price)
	}
	if a.Name != "Tivoli Gardens" {
		t.Errorf("valid fields must survive: %+v", a)
	}

	if a := AttractionFromPayload(nil); a.ID != "" || a.Score != nil {
		t.Errorf("nil payload must produce a zero record: %+v", a)
	}
}

func TestAttractionFromPayload_NumericShapes(t *testing.T) {
	for _, v := range []any{float64(12), float32(12), int(12), int64(12)} {
		a := AttractionFromPayload(map[string]any{"price": v})
		if a.Price == nil || *a.Price != 12 {
			t.Errorf("price %T not coerced: %+v", v, a.Price)
		}
	}
}

func TestContextText(t *testing.T) {
	price := 12.5
	a := Attraction{
		Name:        "Louvre Museum",
		City:        "Paris",
		Type:        "museum",
		Address:     "Rue de Rivoli, Paris",
		Price:       &price,
		Currency:    "EUR",
		OpenHours:   "Tue-Sun: 9:00-18:00; Mon: Closed",
		Description: "Explore world-class collections.",
	}

	got := a.ContextText()
	want := strings.Join([]string{
		"Attraction: Louvre Museum in Paris",
		"Type: museum",
		"Address: Rue de Rivoli, Paris",
		"Price: 12.5 EUR",
		"Opening Hours: Tue-Sun: 9:00-18:00; Mon: Closed",
		"Description: Explore world-class collections.",
	}, "\n")
	if got != want {
		t.Errorf("ContextText:\n got: %q\nwant: %q", got, want)
	}
}

func TestContextText_Partial(t *testing.T) {
	a := Attraction{Name: "Central Park"}
	if got := a.ContextText(); got != "Attraction: Central Park" {
		t.Errorf("name-only rendering: %q", got)
	}

	free := 0.0
	a = Attraction{Name: "Hyde Park", Price: &free}
	got := a.ContextText()
	if !strings.Contains(got, "Price: 0 USD") {
		t.Errorf("zero price must render with USD default: %q", got)
	}

	if got := (Attraction{ID: "a-1"}).ContextText(); got != "" {
		t.Errorf("record with no descriptive fields must render empty, got %q", got)
	}
}
