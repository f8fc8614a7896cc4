package semantic

// SearchResult is a single vector search hit. Fields holds the raw payload
// of the stored point plus the score field, exactly as the provider shaped
// it; normalization into a typed record happens in engine/domain.
type SearchResult struct {
	ID     string
	Fields map[string]any
}

// VectorRecord is a single point to store in Qdrant.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any
}
