package food

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	mu      sync.Mutex
	results map[string][]search.Match
	err     error
	queries []string
}

func (s *stubIndex) Search(ctx context.Context, text string, k int) ([]search.Match, error) {
	s.mu.Lock()
	s.queries = append(s.queries, text)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	matches := s.results[text]
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

type stubGenerator struct {
	mu         sync.Mutex
	candidates []string
	err        error
	called     bool
}

func (s *stubGenerator) Generate(ctx context.Context, text string) ([]string, error) {
	s.mu.Lock()
	s.called = true
	s.mu.Unlock()
	return s.candidates, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			TopK:                5,
			EscalationThreshold: 0.5,
			ExactThreshold:      0.9,
			DefaultUnit:         "porsi",
		},
	}
}

func match(id int64, name string, similarity float64) search.Match {
	return search.Match{FoodID: id, Name: name, Similarity: similarity}
}

func TestResolverDirectHit(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"nasi goreng": {
			match(1, "Nasi goreng", 0.82),
			match(2, "Nasi putih", 0.61),
		},
	}}
	generator := &stubGenerator{candidates: []string{"should not be used"}}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "nasi goreng", 5)

	assert.Equal(t, MethodDirect, res.Method)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, int64(1), res.Matches[0].FoodID)
	assert.Equal(t, []string{"nasi goreng"}, res.SearchTerms)
	assert.False(t, generator.called, "direct hit must not reach the generator")
}

func TestResolverEscalatesBelowThreshold(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"seblak":                 {match(9, "Kerupuk", 0.31)},
		"Kerupuk, pedas, rebus":  {match(3, "Kerupuk pedas", 0.74)},
		"Mie basah, kuah, pedas": {match(4, "Mie basah", 0.69), match(3, "Kerupuk pedas", 0.74)},
	}}
	generator := &stubGenerator{candidates: []string{
		"Kerupuk, pedas, rebus",
		"Mie basah, kuah, pedas",
	}}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "seblak", 5)

	assert.Equal(t, MethodLLMEnhanced, res.Method)
	assert.True(t, generator.called)
	require.Len(t, res.Matches, 2, "duplicate food ids must collapse")
	assert.Equal(t, int64(3), res.Matches[0].FoodID)
	assert.Equal(t, int64(4), res.Matches[1].FoodID)
	assert.Equal(t, generator.candidates, res.SearchTerms)
}

func TestResolverReturnsLowConfidenceSecondAttempt(t *testing.T) {
	// The second attempt returns whatever it finds, no matter the score
	index := &stubIndex{results: map[string][]search.Match{
		"makanan aneh": {match(7, "Sesuatu", 0.12)},
		"Kandidat":     {match(7, "Sesuatu", 0.12)},
	}}
	generator := &stubGenerator{candidates: []string{"Kandidat"}}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "makanan aneh", 5)

	assert.Equal(t, MethodLLMEnhanced, res.Method)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 0.12, res.Matches[0].Similarity)
}

func TestResolverGeneratorFailureFallsBackToRawText(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"sate ayam": {match(5, "Sate ayam", 0.44)},
	}}
	generator := &stubGenerator{err: fmt.Errorf("model unavailable")}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "sate ayam", 5)

	assert.Equal(t, MethodLLMEnhanced, res.Method)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, []string{"sate ayam"}, res.SearchTerms)
}

func TestResolverSearchFailure(t *testing.T) {
	index := &stubIndex{err: fmt.Errorf("backend down")}
	generator := &stubGenerator{candidates: []string{"Kandidat"}}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "nasi", 5)

	assert.Equal(t, MethodError, res.Method)
	assert.Empty(t, res.Matches)
}

func TestResolverNoMatches(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{}}
	generator := &stubGenerator{candidates: []string{"Kandidat"}}
	resolver := NewResolver(testConfig(), index, generator)

	res := resolver.Resolve(context.Background(), "zzz", 5)

	assert.Equal(t, MethodNone, res.Method)
	assert.Empty(t, res.Matches)
}

func TestResolverEmptyText(t *testing.T) {
	resolver := NewResolver(testConfig(), &stubIndex{}, &stubGenerator{})

	res := resolver.Resolve(context.Background(), "   ", 5)

	assert.Equal(t, MethodNone, res.Method)
	assert.Empty(t, res.Matches)
}

func TestResolverTruncatesToTopK(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"a": {match(1, "A", 0.40), match(2, "B", 0.39)},
		"b": {match(3, "C", 0.38), match(4, "D", 0.37)},
	}}
	generator := &stubGenerator{candidates: []string{"a", "b"}}
	cfg := testConfig()
	resolver := NewResolver(cfg, index, generator)

	res := resolver.Resolve(context.Background(), "x", 3)

	assert.Equal(t, MethodLLMEnhanced, res.Method)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, int64(1), res.Matches[0].FoodID)
	assert.Equal(t, int64(3), res.Matches[2].FoodID)
}
