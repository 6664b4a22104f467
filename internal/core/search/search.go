// Package search provides nearest-neighbor similarity search over the food
// corpus. Two backends implement the same contract: an in-process vector
// index and a Postgres/pgvector index. The backend is selected once at
// startup via configuration.
package search

import (
	"context"
)

// Match is one corpus entry returned by similarity search. Similarity is
// cosine similarity over L2-normalized embeddings, higher is closer.
// Nutrients is an optional inline snapshot; the remote backend returns it
// directly, the local backend leaves it nil.
type Match struct {
	FoodID         int64              `json:"food_id"`
	Name           string             `json:"nama"`
	NormalizedName string             `json:"nama_clean,omitempty"`
	Similarity     float64            `json:"similarity"`
	Nutrients      map[string]float64 `json:"nutrition_data,omitempty"`
}

// Index is the similarity-search contract. k bounds the result count but
// does not guarantee it; fewer matches may be returned.
type Index interface {
	Search(ctx context.Context, text string, k int) ([]Match, error)
}
