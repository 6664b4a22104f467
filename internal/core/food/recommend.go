package food

import (
	"math"
	"sort"
	"strings"

	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// WeeklyPattern is one observed trend in a user's weekly nutrition
type WeeklyPattern struct {
	Type    string `json:"type"`
	Impact  string `json:"impact"`
	Message string `json:"message"`
}

// WeeklyAnalysis summarizes a user's week of logged meals
type WeeklyAnalysis struct {
	Patterns        []WeeklyPattern `json:"patterns"`
	Recommendations []string        `json:"recommendations"`
}

// Preferences constrains recommendations. Budget 0 means unconstrained.
type Preferences struct {
	Budget float64  `json:"budget"`
	Likes  []string `json:"likes"`
	Avoid  []string `json:"avoid"`
}

// CatalogItem is one purchasable food the recommender scores
type CatalogItem struct {
	FoodID    int64              `json:"food_id"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	Nutrition map[string]float64 `json:"nutrition"`
}

// Recommendation is one scored suggestion with a composed reason
type Recommendation struct {
	FoodID         int64   `json:"foodId"`
	Name           string  `json:"name"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Reason         string  `json:"reason"`
}

const closingClause = "Dipilih karena harga terjangkau dan sesuai preferensi kamu"

// RecommendDaily scores the catalog against the weekly analysis and the
// user's preferences and returns the top suggestions, best first. Avoided
// foods and items over budget never appear.
func RecommendDaily(weekly WeeklyAnalysis, prefs Preferences, catalog []CatalogItem, topK int) []Recommendation {
	if topK <= 0 {
		topK = 3
	}

	keyIssue := pickKeyIssue(weekly.Patterns)
	mainRec := ""
	if len(weekly.Recommendations) > 0 {
		mainRec = weekly.Recommendations[0]
	}

	type scored struct {
		item  CatalogItem
		score float64
	}
	candidates := make([]scored, 0, len(catalog))

	for _, item := range catalog {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if isAvoided(name, prefs.Avoid) {
			continue
		}
		if prefs.Budget > 0 && item.Price > prefs.Budget {
			continue
		}
		candidates = append(candidates, scored{
			item:  item,
			score: scoreItem(item, keyIssue, prefs),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	reason := composeReason(keyIssue, mainRec)
	results := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Recommendation{
			FoodID:         c.item.FoodID,
			Name:           c.item.Name,
			EstimatedPrice: math.Round(c.item.Price),
			Reason:         reason,
		})
	}

	common.LogInfo("daily recommendations composed",
		zap.Int("catalog", len(catalog)),
		zap.Int("returned", len(results)),
		zap.String("key_issue", keyIssue),
	)

	return results
}

// pickKeyIssue prefers the first negative high-impact pattern, falling
// back to the first pattern of any kind
func pickKeyIssue(patterns []WeeklyPattern) string {
	for _, p := range patterns {
		if strings.EqualFold(p.Type, "negative") && strings.EqualFold(p.Impact, "high") {
			return p.Message
		}
	}
	if len(patterns) > 0 {
		return patterns[0].Message
	}
	return ""
}

// scoreItem rates one catalog item for today's suggestion
func scoreItem(item CatalogItem, keyIssue string, prefs Preferences) float64 {
	score := 0.0

	protein := item.Nutrition["Protein"]
	fat := item.Nutrition["Lemak Total"]
	if fat == 0 {
		fat = item.Nutrition["Lemak"]
	}
	sugar := item.Nutrition["Gula"]

	if strings.Contains(strings.ToLower(keyIssue), "protein") {
		if protein >= 8 {
			score += 2
		} else {
			score -= 1
		}
	}
	if fat >= 15 {
		score -= 0.5
	}
	if sugar >= 15 {
		score -= 0.5
	}

	lowered := strings.ToLower(item.Name)
	for _, like := range prefs.Likes {
		like = strings.ToLower(strings.TrimSpace(like))
		if like != "" && strings.Contains(lowered, like) {
			score += 0.5
			break
		}
	}

	if prefs.Budget > 0 {
		score += math.Max(0, 1-item.Price/prefs.Budget)
	}

	return score
}

func isAvoided(name string, avoid []string) bool {
	for _, a := range avoid {
		if strings.EqualFold(strings.TrimSpace(a), name) {
			return true
		}
	}
	return false
}

// composeReason joins the key issue, the main weekly recommendation and
// the closing clause into one sentence chain
func composeReason(keyIssue, mainRec string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{keyIssue, mainRec, closingClause} {
		p = strings.TrimRight(strings.TrimSpace(p), ".")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ") + "."
}
