package food

import (
	"fmt"
	"strings"

	"nutrimori-ai/internal/core/corpus"
	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// Calculator turns ranked matches plus a portion into scaled nutrition.
// A high-confidence top match is used verbatim; otherwise the top three
// candidates are averaged to smooth out ambiguity.
type Calculator struct {
	config *config.Config
	store  *corpus.Store
}

// NewCalculator creates a nutrition calculator backed by the corpus
func NewCalculator(cfg *config.Config, store *corpus.Store) *Calculator {
	return &Calculator{
		config: cfg,
		store:  store,
	}
}

// ComputeSmart computes the nutrition for quantity*unit of the food the
// matches describe. When the top similarity reaches the exact threshold
// only the top match is used; below it the per-100g values of up to three
// candidates are averaged before scaling. Missing nutrients count as 0.
func (c *Calculator) ComputeSmart(matches []search.Match, quantity float64, unit string) (*NutritionResult, error) {
	if len(matches) == 0 {
		return nil, common.ErrNoMatchFound
	}

	top := matches[0]
	gram := ToGrams(quantity, unit, top.NormalizedName)

	if top.Similarity >= c.config.Search.ExactThreshold {
		return &NutritionResult{
			GramWeight:   gram,
			SelectedName: top.Name,
			Method:       NutritionExact,
			Nutrients:    c.scale(c.nutrientsFor(top), gram),
		}, nil
	}

	selected := matches
	if len(selected) > 3 {
		selected = selected[:3]
	}

	averaged := make(map[string]float64, len(corpus.NutrientColumns))
	for _, column := range corpus.NutrientColumns {
		sum := 0.0
		for _, m := range selected {
			sum += c.nutrientsFor(m)[column]
		}
		averaged[column] = sum / float64(len(selected))
	}

	common.LogDebug("averaging low-confidence candidates",
		zap.Float64("top_similarity", top.Similarity),
		zap.Int("candidates", len(selected)),
	)

	return &NutritionResult{
		GramWeight:   gram,
		SelectedName: mixLabel(selected),
		Method:       NutritionAverage,
		Nutrients:    c.scale(averaged, gram),
	}, nil
}

// nutrientsFor returns the per-100g nutrient map for a match, preferring
// the snapshot carried by the match over a corpus lookup. An unknown food
// id yields an all-zero map.
func (c *Calculator) nutrientsFor(m search.Match) map[string]float64 {
	if m.Nutrients != nil {
		return m.Nutrients
	}
	if record := c.store.GetByID(m.FoodID); record != nil {
		return record.Nutrients
	}
	common.LogWarn("no nutrient data for match", zap.Int64("food_id", m.FoodID))
	return nil
}

// scale converts per-100g values to the given gram weight over the
// canonical nutrient columns
func (c *Calculator) scale(per100g map[string]float64, gram float64) map[string]float64 {
	scaled := make(map[string]float64, len(corpus.NutrientColumns))
	for _, column := range corpus.NutrientColumns {
		scaled[column] = per100g[column] * gram / 100
	}
	return scaled
}

// mixLabel names an averaged result after its top two candidates
func mixLabel(selected []search.Match) string {
	names := make([]string, 0, 2)
	for i, m := range selected {
		if i == 2 {
			break
		}
		names = append(names, m.Name)
	}
	return fmt.Sprintf("Mix: %s", strings.Join(names, ", "))
}
