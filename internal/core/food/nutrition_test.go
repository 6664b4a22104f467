package food

import (
	"os"
	"path/filepath"
	"testing"

	"nutrimori-ai/internal/core/corpus"
	"nutrimori-ai/internal/core/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()

	data := `[
		{"food_id": 1, "nama": "Tahu goreng", "nutrition_data": {"Energi": 200, "Protein": 10}},
		{"food_id": 2, "nama": "Tempe goreng", "nutrition_data": {"Energi": 150, "Protein": 20}},
		{"food_id": 3, "nama": "Telur rebus", "nutrition_data": {"Energi": 100, "Protein": 30}}
	]`
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	store, err := corpus.Load(path)
	require.NoError(t, err)
	return store
}

func TestComputeSmartExact(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	matches := []search.Match{
		{FoodID: 1, Name: "Tahu goreng", Similarity: 0.95, Nutrients: map[string]float64{"Energi": 200, "Protein": 10}},
		{FoodID: 2, Name: "Tempe goreng", Similarity: 0.70},
	}

	// 3 unknown units fall back to 100g each
	result, err := calc.ComputeSmart(matches, 3, "")
	require.NoError(t, err)

	assert.Equal(t, NutritionExact, result.Method)
	assert.Equal(t, "Tahu goreng", result.SelectedName)
	assert.Equal(t, 300.0, result.GramWeight)
	assert.InDelta(t, 600.0, result.Nutrients["Energi"], 1e-9)
	assert.InDelta(t, 30.0, result.Nutrients["Protein"], 1e-9)
	assert.Zero(t, result.Nutrients["Lemak"], "missing nutrients scale to zero")
}

func TestComputeSmartAveragesLowConfidence(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	matches := []search.Match{
		{FoodID: 1, Name: "Tahu goreng", Similarity: 0.60, Nutrients: map[string]float64{"Protein": 10}},
		{FoodID: 2, Name: "Tempe goreng", Similarity: 0.55, Nutrients: map[string]float64{"Protein": 20}},
		{FoodID: 3, Name: "Telur rebus", Similarity: 0.50, Nutrients: map[string]float64{"Protein": 30}},
		{FoodID: 4, Name: "Ikan asin", Similarity: 0.45, Nutrients: map[string]float64{"Protein": 99}},
	}

	result, err := calc.ComputeSmart(matches, 1, "porsi")
	require.NoError(t, err)

	assert.Equal(t, NutritionAverage, result.Method)
	assert.Equal(t, "Mix: Tahu goreng, Tempe goreng", result.SelectedName)
	assert.Equal(t, 150.0, result.GramWeight)
	// mean of 10/20/30 per 100g, scaled to 150g; the fourth match is ignored
	assert.InDelta(t, 30.0, result.Nutrients["Protein"], 1e-9)
}

func TestComputeSmartSingleLowConfidenceMatch(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	matches := []search.Match{
		{FoodID: 1, Name: "Tahu goreng", Similarity: 0.40, Nutrients: map[string]float64{"Energi": 200}},
	}

	result, err := calc.ComputeSmart(matches, 1, "porsi")
	require.NoError(t, err)

	assert.Equal(t, NutritionAverage, result.Method)
	assert.Equal(t, "Mix: Tahu goreng", result.SelectedName)
	assert.InDelta(t, 300.0, result.Nutrients["Energi"], 1e-9)
}

func TestComputeSmartCorpusFallback(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	// No inline snapshot; per-100g values come from the corpus
	matches := []search.Match{
		{FoodID: 2, Name: "Tempe goreng", Similarity: 0.95},
	}

	result, err := calc.ComputeSmart(matches, 2, "potong")
	require.NoError(t, err)

	assert.Equal(t, 160.0, result.GramWeight)
	assert.InDelta(t, 240.0, result.Nutrients["Energi"], 1e-9)
	assert.InDelta(t, 32.0, result.Nutrients["Protein"], 1e-9)
}

func TestComputeSmartUnknownFoodCountsAsZero(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	matches := []search.Match{
		{FoodID: 999, Name: "Tidak dikenal", Similarity: 0.95},
	}

	result, err := calc.ComputeSmart(matches, 1, "porsi")
	require.NoError(t, err)
	assert.Zero(t, result.Nutrients["Energi"])
}

func TestComputeSmartNoMatches(t *testing.T) {
	calc := NewCalculator(testConfig(), newTestStore(t))

	_, err := calc.ComputeSmart(nil, 1, "porsi")
	assert.Error(t, err)
}
