// Package food implements the candidate-resolution and nutrition
// pipeline: splitting utterances into mentions, resolving each mention
// against the corpus through the two-attempt escalation loop, converting
// portions to grams, scaling nutrients, and aggregating meal totals.
package food

import (
	"nutrimori-ai/internal/core/search"
)

// Method identifies which resolution strategy produced a match list
type Method string

const (
	MethodDirect      Method = "direct_match"
	MethodLLMEnhanced Method = "llm_enhanced"
	MethodNone        Method = "none"
	MethodError       Method = "error"
)

// NutritionMethod identifies the nutrition computation strategy
type NutritionMethod string

const (
	NutritionExact   NutritionMethod = "exact"
	NutritionAverage NutritionMethod = "average"
)

// Mention is one independently resolvable food reference parsed from a
// user utterance. Confidence is a parsing heuristic, not a similarity
// score.
type Mention struct {
	RawText    string  `json:"raw_text"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"qty"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}

// Resolution is the outcome of resolving one mention. Matches is ordered
// by descending similarity and deduplicated by food id; it may be empty.
type Resolution struct {
	Matches     []search.Match `json:"matches"`
	Method      Method         `json:"method"`
	SearchTerms []string       `json:"search_terms,omitempty"`
}

// TopSimilarity returns the best similarity, or 0 when empty
func (r *Resolution) TopSimilarity() float64 {
	if len(r.Matches) == 0 {
		return 0
	}
	return r.Matches[0].Similarity
}

// NutritionResult is the scaled nutrition for one resolved mention
type NutritionResult struct {
	GramWeight   float64            `json:"gram"`
	SelectedName string             `json:"nama_pilihan"`
	Method       NutritionMethod    `json:"metode"`
	Nutrients    map[string]float64 `json:"nutrients"`
}

// ServingSize describes a stated or implied portion
type ServingSize struct {
	Qty        float64  `json:"qty"`
	Unit       string   `json:"unit"`
	GramWeight *float64 `json:"gramWeight"`
}

// MealItem is the per-mention detail reported to the caller. FoodID is nil
// when the mention stayed unresolved after both attempts.
type MealItem struct {
	TempID          int            `json:"tempId"`
	DetectedName    string         `json:"detectedName"`
	FoodID          *int64         `json:"foodId"`
	ServingSize     ServingSize    `json:"servingSize"`
	ConfidenceScore float64        `json:"confidenceScore"`
	Matches         []search.Match `json:"matches"`
	Method          string         `json:"method,omitempty"`
}

// ParsedMeal groups the per-mention items under the inferred meal type
type ParsedMeal struct {
	MealType string     `json:"mealType"`
	Items    []MealItem `json:"items"`
}

// MealLog is the structured food log for one utterance
type MealLog struct {
	LogID        string     `json:"logId"`
	UserInput    string     `json:"userInput"`
	ParsedResult ParsedMeal `json:"parsedResult"`
	CreatedAt    string     `json:"createdAt"`
}

// NutritionFacts is the macro rollup for one meal
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Sugar    float64 `json:"sugar"`
}

// Micronutrients is the micro rollup for one meal
type Micronutrients struct {
	VitaminC float64 `json:"vitamin_c"`
	Iron     float64 `json:"iron"`
}

// MealAnalysis is the derived nutrition analysis for one meal
type MealAnalysis struct {
	AnalysisID     string         `json:"analysisId"`
	FoodLogID      string         `json:"foodLogId"`
	NutritionFacts NutritionFacts `json:"nutritionFacts"`
	Micronutrients Micronutrients `json:"micronutrients"`
	HealthTags     []string       `json:"healthTags"`
}

// MealResult is the full output of the meal pipeline. Totals sums the
// nutrient maps of every resolved mention; unresolved mentions contribute
// nothing.
type MealResult struct {
	FoodLog  MealLog            `json:"foodLog"`
	Analysis MealAnalysis       `json:"analysis"`
	Totals   map[string]float64 `json:"-"`
}
