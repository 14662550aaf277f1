// ABOUTME: Embedding results and similarity search result types
// ABOUTME: EmbeddingResult is either a vector or an unavailable marker with a reason
package models

// EmbeddingResult is the outcome of an embedding request. Exactly one of a
// vector or an unavailable reason is present.
type EmbeddingResult struct {
	vector []float64
	reason string
}

// EmbeddingOK wraps a computed vector
func EmbeddingOK(vector []float64) EmbeddingResult {
	if len(vector) == 0 {
		return EmbeddingUnavailable("empty vector")
	}
	return EmbeddingResult{vector: vector}
}

// EmbeddingUnavailable records why no vector could be produced
func EmbeddingUnavailable(reason string) EmbeddingResult {
	if reason == "" {
		reason = "unavailable"
	}
	return EmbeddingResult{reason: reason}
}

// Vector returns the embedding and true, or nil and false when unavailable
func (r EmbeddingResult) Vector() ([]float64, bool) {
	return r.vector, r.vector != nil
}

// Reason explains an unavailable result; empty when a vector is present
func (r EmbeddingResult) Reason() string {
	return r.reason
}

// SimilarItem is a candidate ranked by cosine similarity
type SimilarItem struct {
	Item       *Item   `json:"item"`
	Similarity float64 `json:"similarity"`
}

// Deal is a similar item that is meaningfully cheaper than the query item.
// SavingsPercent is a fraction in [0, 1).
type Deal struct {
	Item           *Item   `json:"item"`
	Similarity     float64 `json:"similarity"`
	SavingsAmount  float64 `json:"savings_amount"`
	SavingsPercent float64 `json:"savings_percent"`
}
