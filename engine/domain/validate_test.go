package domain

import (
	"errors"
	"testing"
)

func TestValidateAsk(t *testing.T) {
	cases := []struct {
		name  string
		query string
		topN  int
		want  error
	}{
		{"valid", "parks in London", 3, nil},
		{"default top_n", "parks in London", 0, nil},
		{"min", "q", MinTopN, nil},
		{"max", "q", MaxTopN, nil},
		{"empty query", "", 3, ErrEmptyQuery},
		{"whitespace query", "   \t", 3, ErrEmptyQuery},
		{"negative top_n", "q", -1, ErrTopNOutOfRange},
		{"too large", "q", MaxTopN + 1, ErrTopNOutOfRange},
	}
	for _, tc := range cases {
		if got := ValidateAsk(tc.query, tc.topN); !errors.Is(got, tc.want) {
			t.Errorf("%s: ValidateAsk = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidateRow(t *testing.T) {
	row := AttractionRow{ID: "a-1", Name: "Eiffel Tower"}
	if err := ValidateRow(row); err != nil {
		t.Errorf("valid row rejected: %v", err)
	}
	if err := ValidateRow(AttractionRow{Name: "x"}); !errors.Is(err, ErrRowMissingID) {
		t.Errorf("missing id: %v", err)
	}
	if err := ValidateRow(AttractionRow{ID: "a-1", Name: " "}); !errors.Is(err, ErrRowMissingName) {
		t.Errorf("blank name: %v", err)
	}
}

func TestEmbedText(t *testing.T) {
	row := AttractionRow{
		ID:        "a-1",
		Name:      "Eiffel Tower",
		Type:      "landmark",
		Location:  "Paris, France",
		OpenHours: "Daily: 9:00-23:00",
	}
	want := "Eiffel Tower landmark Paris, France Daily: 9:00-23:00"
	if got := row.EmbedText(); got != want {
		t.Errorf("EmbedText = %q, want %q", got, want)
	}

	sparse := AttractionRow{Name: "Hyde Park"}
	if got := sparse.EmbedText(); got != "Hyde Park" {
		t.Errorf("sparse EmbedText = %q", got)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	price := 28.3
	row := AttractionRow{
		ID:          "a-1",
		Name:        "Eiffel Tower",
		City:        "Paris",
		Type:        "landmark",
		Location:    "Paris, France",
		Address:     "Champ de Mars",
		Price:       &price,
		Currency:    "EUR",
		OpenHours:   "Daily: 9:00-23:00",
		Description: "Climb to the top.",
	}

	a := AttractionFromPayload(row.Payload())
	if a.ID != row.ID || a.Name != row.Name || a.City != row.City {
		t.Errorf("identity fields lost: %+v", a)
	}
	if a.Price == nil || *a.Price != price {
		t.Errorf("price lost: %+v", a.Price)
	}
	if a.Description != row.Description {
		t.Errorf("description lost: %q", a.Description)
	}
	// Payload carries no score field; retrieval fills that in at query time.
	if a.Score != nil {
		t.Errorf("unexpected score in stored payload: %v", *a.Score)
	}
}

func TestPayload_OmitsEmptyFields(t *testing.T) {
	row := AttractionRow{ID: "a-1", Name: "Hyde Park", City: "London", Type: "park"}
	p := row.Payload()
	if len(p) != 4 {
		t.Errorf("expected 4 payload fields, got %d: %v", len(p), p)
	}
	if _, ok := p["price"]; ok {
		t.Error("nil price must be omitted")
	}
}
