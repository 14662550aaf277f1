// ABOUTME: Vector encoding and cosine similarity for cached item embeddings
// ABOUTME: Vectors are stored as little-endian float64 BLOBs on the items table
package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// SetEmbedding caches an embedding vector on an item along with the hash of
// the text it was computed from
func (s *ItemStore) SetEmbedding(ctx context.Context, itemID string, vector []float64, key string) error {
	if len(vector) == 0 {
		return fmt.Errorf("embedding for %s is empty", itemID)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET embedding = ?, embedding_key = ? WHERE id = ?
	`, vectorToBlob(vector), key, itemID)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return expectOneRow(res, "item", itemID)
}

// ClearEmbedding drops a cached vector so it is recomputed on next use
func (s *ItemStore) ClearEmbedding(ctx context.Context, itemID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET embedding = NULL, embedding_key = '', updated_at = ? WHERE id = ?
	`, time.Now().UTC(), itemID)
	return err
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	if len(blob) == 0 {
		return nil
	}
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
