package semantic

import (
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	in := map[string]any{
		"attraction_name": "Eiffel Tower",
		"price":           28.3,
		"visits":          int64(1000),
		"open":            true,
	}

	out := fromPayload(toPayload(in))
	if out["attraction_name"] != "Eiffel Tower" {
		t.Errorf("string lost: %v", out["attraction_name"])
	}
	if out["price"] != 28.3 {
		t.Errorf("double lost: %v", out["price"])
	}
	if out["visits"] != int64(1000) {
		t.Errorf("integer lost: %v", out["visits"])
	}
	if out["open"] != true {
		t.Errorf("bool lost: %v", out["open"])
	}
}

func TestToPayload_IntWidening(t *testing.T) {
	out := fromPayload(toPayload(map[string]any{"n": 7}))
	if out["n"] != int64(7) {
		t.Errorf("int must round-trip as int64, got %T %v", out["n"], out["n"])
	}
}

func TestToPayload_UnknownTypeStringified(t *testing.T) {
	out := fromPayload(toPayload(map[string]any{"weird": []int{1, 2}}))
	if out["weird"] != "[1 2]" {
		t.Errorf("unknown types must stringify, got %v", out["weird"])
	}
}
