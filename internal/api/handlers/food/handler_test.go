package food

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"nutrimori-ai/internal/core/corpus"
	corefood "nutrimori-ai/internal/core/food"
	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	results map[string][]search.Match
	err     error
}

func (s *stubIndex) Search(ctx context.Context, text string, k int) ([]search.Match, error) {
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
	candidates []string
}

func (s *stubGenerator) Generate(ctx context.Context, text string) ([]string, error) {
	return s.candidates, nil
}

func newTestRouter(t *testing.T, index search.Index) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Search: config.SearchConfig{
			TopK:                5,
			EscalationThreshold: 0.5,
			ExactThreshold:      0.9,
			DefaultUnit:         "porsi",
		},
	}

	data := `[{"food_id": 1, "nama": "Nasi goreng", "nutrition_data": {"Energi": 250, "Protein": 6}}]`
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	store, err := corpus.Load(path)
	require.NoError(t, err)

	resolver := corefood.NewResolver(cfg, index, &stubGenerator{candidates: []string{"Kandidat"}})
	calculator := corefood.NewCalculator(cfg, store)
	aggregator := corefood.NewAggregator(cfg, resolver, calculator)
	handler := NewHandler(cfg, resolver, calculator, aggregator)

	router := gin.New()
	router.POST("/match", handler.HandleMatch)
	router.POST("/parse", handler.HandleParse)
	router.POST("/log", handler.HandleLog)
	router.POST("/recommend", handler.HandleRecommend)
	return router
}

func doPost(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleMatch(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"nasi goreng": {{FoodID: 1, Name: "Nasi goreng", Similarity: 0.85}},
	}}
	router := newTestRouter(t, index)

	t.Run("per-mention results", func(t *testing.T) {
		rec := doPost(router, "/match", `{"text": "nasi goreng dan zzz"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp MatchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 2)

		resolved := resp.Results[0]
		assert.Equal(t, "nasi goreng", resolved.Mention.Name)
		assert.Equal(t, "direct_match", resolved.Method)
		require.Len(t, resolved.Matches, 1)
		assert.Equal(t, int64(1), resolved.Matches[0].FoodID)

		unresolved := resp.Results[1]
		assert.Equal(t, "none", unresolved.Method)
		assert.Empty(t, unresolved.Matches)
	})

	t.Run("missing text is 400", func(t *testing.T) {
		rec := doPost(router, "/match", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleParse(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"nasi goreng": {{FoodID: 1, Name: "Nasi goreng", Similarity: 0.95}},
	}}
	router := newTestRouter(t, index)

	t.Run("resolved with nutrition", func(t *testing.T) {
		rec := doPost(router, "/parse", `{"text": "nasi goreng", "quantity": 2, "unit": "porsi"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ParseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "direct_match", resp.Method)
		require.NotNil(t, resp.Nutrition)
		assert.Equal(t, 300.0, resp.Nutrition.GramWeight)
		assert.InDelta(t, 750.0, resp.Nutrition.Nutrients["Energi"], 1e-9)
	})

	t.Run("defaults applied", func(t *testing.T) {
		rec := doPost(router, "/parse", `{"text": "nasi goreng"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ParseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Nutrition)
		assert.Equal(t, 150.0, resp.Nutrition.GramWeight)
	})

	t.Run("no match is 404", func(t *testing.T) {
		rec := doPost(router, "/parse", `{"text": "zzz"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NO_MATCH_FOUND")
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("backend failure is 503", func(t *testing.T) {
		broken := newTestRouter(t, &stubIndex{err: fmt.Errorf("down")})
		rec := doPost(broken, "/parse", `{"text": "nasi goreng"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "COLLABORATOR_FAILURE")
	})
}

func TestHandleLog(t *testing.T) {
	index := &stubIndex{results: map[string][]search.Match{
		"nasi goreng": {{FoodID: 1, Name: "Nasi goreng", Similarity: 0.95}},
	}}
	router := newTestRouter(t, index)

	t.Run("logs a meal", func(t *testing.T) {
		rec := doPost(router, "/log", `{"text": "nasi goreng", "timestamp": "2025-03-10T08:00:00Z"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp corefood.MealResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Sarapan", resp.FoodLog.ParsedResult.MealType)
		require.Len(t, resp.FoodLog.ParsedResult.Items, 1)
		assert.Equal(t, 375.0, resp.Analysis.NutritionFacts.Calories)
	})

	t.Run("bad timestamp is 400", func(t *testing.T) {
		rec := doPost(router, "/log", `{"text": "nasi goreng", "timestamp": "yesterday"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecommend(t *testing.T) {
	router := newTestRouter(t, &stubIndex{})

	t.Run("recommends from catalog", func(t *testing.T) {
		body := `{
			"weekly_analysis": {
				"patterns": [{"type": "negative", "impact": "high", "message": "Protein rendah"}],
				"recommendations": ["Perbanyak lauk protein"]
			},
			"preferences": {"budget": 20000},
			"catalog": [
				{"food_id": 1, "name": "Dada ayam", "price": 12000, "nutrition": {"Protein": 25}},
				{"food_id": 2, "name": "Donat", "price": 9000, "nutrition": {"Protein": 3, "Gula": 20}}
			],
			"top_k": 1
		}`
		rec := doPost(router, "/recommend", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp RecommendResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "Dada ayam", resp.Recommendations[0].Name)
	})

	t.Run("missing catalog is 400", func(t *testing.T) {
		rec := doPost(router, "/recommend", `{"preferences": {}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
