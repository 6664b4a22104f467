package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"nutrimori-ai/internal/core/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors per input text
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(text string) ([]float32, error) {
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	NormalizeL2(out)
	return out, nil
}

func loadStore(t *testing.T, content string) *corpus.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	store, err := corpus.Load(path)
	require.NoError(t, err)
	return store
}

func TestNewLocalIndex(t *testing.T) {
	t.Run("skips records without embeddings", func(t *testing.T) {
		store := loadStore(t, `[
			{"food_id": 1, "nama": "A", "embedding": [1, 0]},
			{"food_id": 2, "nama": "B"}
		]`)

		idx, err := NewLocalIndex(store, &fakeEmbedder{})
		require.NoError(t, err)
		assert.Len(t, idx.items, 1)
	})

	t.Run("rejects mismatched dimensions", func(t *testing.T) {
		store := loadStore(t, `[
			{"food_id": 1, "nama": "A", "embedding": [1, 0]},
			{"food_id": 2, "nama": "B", "embedding": [1, 0, 0]}
		]`)

		_, err := NewLocalIndex(store, &fakeEmbedder{})
		assert.Error(t, err)
	})

	t.Run("rejects corpus without any embeddings", func(t *testing.T) {
		store := loadStore(t, `[{"food_id": 1, "nama": "A"}]`)

		_, err := NewLocalIndex(store, &fakeEmbedder{})
		assert.Error(t, err)
	})
}

func TestLocalIndexSearch(t *testing.T) {
	store := loadStore(t, `[
		{"food_id": 1, "nama": "Nasi putih", "embedding": [1, 0]},
		{"food_id": 2, "nama": "Ayam goreng", "embedding": [0, 1]},
		{"food_id": 3, "nama": "Nasi uduk", "embedding": [0.9, 0.1]}
	]`)
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"nasi": {1, 0},
	}}

	idx, err := NewLocalIndex(store, embedder)
	require.NoError(t, err)

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		matches, err := idx.Search(context.Background(), "nasi", 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, int64(1), matches[0].FoodID)
		assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
		assert.Equal(t, int64(3), matches[1].FoodID)
		assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		_, err := idx.Search(context.Background(), "unknown", 2)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := idx.Search(ctx, "nasi", 2)
		assert.Error(t, err)
	})
}

func TestVectorHelpers(t *testing.T) {
	t.Run("normalize to unit length", func(t *testing.T) {
		vec := []float32{3, 4}
		NormalizeL2(vec)
		assert.InDelta(t, 0.6, vec[0], 1e-6)
		assert.InDelta(t, 0.8, vec[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		vec := []float32{0, 0}
		NormalizeL2(vec)
		assert.Equal(t, []float32{0, 0}, vec)
	})

	t.Run("dot product", func(t *testing.T) {
		assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-9)
	})
}
