// ABOUTME: Tests for vector encoding, embedding caching, and cosine similarity
// ABOUTME: Covers BLOB round trips and degenerate similarity inputs
package sqlite

import (
	"context"
	"math"
	"testing"
)

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float64{0.25, -1.5, 3.125, 0}
	got := blobToVector(vectorToBlob(vec))
	if len(got) != len(vec) {
		t.Fatalf("len = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
	if blobToVector(nil) != nil {
		t.Error("empty blob should decode to nil")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
		{"known angle", []float64{1, 0}, []float64{0.82, math.Sqrt(1 - 0.82*0.82)}, 0.82},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemStore_Embedding(t *testing.T) {
	db := newTestDB(t)
	store := NewItemStore(db)
	ctx := context.Background()

	item := newTestItem(t, "Mouse", nil, nil)
	_ = store.Create(ctx, item)

	if err := store.SetEmbedding(ctx, item.ItemID, []float64{0.1, 0.2, 0.3}, "hash1"); err != nil {
		t.Fatalf("SetEmbedding() error = %v", err)
	}
	got, _ := store.Get(ctx, item.ItemID)
	if len(got.Embedding) != 3 || got.EmbeddingKey != "hash1" {
		t.Errorf("embedding = %v key %q", got.Embedding, got.EmbeddingKey)
	}

	if err := store.ClearEmbedding(ctx, item.ItemID); err != nil {
		t.Fatalf("ClearEmbedding() error = %v", err)
	}
	got, _ = store.Get(ctx, item.ItemID)
	if got.Embedding != nil || got.EmbeddingKey != "" {
		t.Error("ClearEmbedding() should drop the vector and key")
	}

	if err := store.SetEmbedding(ctx, item.ItemID, nil, "x"); err == nil {
		t.Error("SetEmbedding() should reject an empty vector")
	}
	if err := store.SetEmbedding(ctx, "item_missing", []float64{1}, "x"); err == nil {
		t.Error("SetEmbedding() should fail for a missing item")
	}
}
