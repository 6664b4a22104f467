package food

import (
	"context"
	"math"
	"time"

	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// mentionConcurrency caps how many mentions resolve in parallel per meal
const mentionConcurrency = 4

// Aggregator runs the full meal pipeline: split the utterance into
// mentions, resolve each one concurrently, compute per-mention nutrition
// and roll everything up into a food log plus analysis.
type Aggregator struct {
	config     *config.Config
	resolver   *Resolver
	calculator *Calculator
}

// NewAggregator creates a meal aggregator
func NewAggregator(cfg *config.Config, resolver *Resolver, calculator *Calculator) *Aggregator {
	return &Aggregator{
		config:     cfg,
		resolver:   resolver,
		calculator: calculator,
	}
}

// mentionOutcome pairs a resolved mention with its nutrition, filled in
// by the worker that owns the slot
type mentionOutcome struct {
	item      MealItem
	nutrition *NutritionResult
}

// Process resolves one meal utterance recorded at loggedAt. Unresolved
// mentions stay in the log with a nil food id and contribute nothing to
// the totals.
func (a *Aggregator) Process(ctx context.Context, text string, loggedAt time.Time) (*MealResult, error) {
	mentions := SplitMentions(text, a.config.Search.DefaultUnit)
	if len(mentions) == 0 {
		return nil, common.NewValidationError("input text is empty")
	}

	outcomes := make([]mentionOutcome, len(mentions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(mentionConcurrency)
	for i, mention := range mentions {
		g.Go(func() error {
			outcomes[i] = a.resolveMention(ctx, i, mention)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	items := make([]MealItem, 0, len(outcomes))
	for _, outcome := range outcomes {
		items = append(items, outcome.item)
		if outcome.nutrition == nil {
			continue
		}
		for name, value := range outcome.nutrition.Nutrients {
			totals[name] += value
		}
	}

	logID := common.ShortID("log")
	result := &MealResult{
		FoodLog: MealLog{
			LogID:     logID,
			UserInput: text,
			ParsedResult: ParsedMeal{
				MealType: MealTypeFor(loggedAt),
				Items:    items,
			},
			CreatedAt: loggedAt.UTC().Format(time.RFC3339),
		},
		Analysis: a.analyze(logID, totals),
		Totals:   totals,
	}

	common.LogInfo("meal processed",
		zap.String("log_id", logID),
		zap.Int("mentions", len(mentions)),
		zap.Float64("calories", result.Analysis.NutritionFacts.Calories),
	)

	return result, nil
}

// resolveMention resolves and prices out one mention. It never fails the
// meal: resolution errors are encoded in the item's method field.
func (a *Aggregator) resolveMention(ctx context.Context, index int, mention Mention) mentionOutcome {
	resolution := a.resolver.Resolve(ctx, mention.Name, a.config.Search.TopK)

	item := MealItem{
		TempID:       index + 1,
		DetectedName: mention.Name,
		ServingSize: ServingSize{
			Qty:  mention.Quantity,
			Unit: mention.Unit,
		},
		ConfidenceScore: math.Min(mention.Confidence, resolution.TopSimilarity()),
		Matches:         resolution.Matches,
		Method:          string(resolution.Method),
	}

	if len(resolution.Matches) == 0 {
		return mentionOutcome{item: item}
	}

	top := resolution.Matches[0]
	item.FoodID = &top.FoodID

	nutrition, err := a.calculator.ComputeSmart(resolution.Matches, mention.Quantity, mention.Unit)
	if err != nil {
		common.LogWarn("nutrition computation failed",
			zap.String("mention", mention.Name),
			zap.Error(err),
		)
		return mentionOutcome{item: item}
	}

	item.ServingSize.GramWeight = &nutrition.GramWeight
	return mentionOutcome{item: item, nutrition: nutrition}
}

// analyze derives the nutrition facts, micronutrients and health tags
// from the meal totals
func (a *Aggregator) analyze(logID string, totals map[string]float64) MealAnalysis {
	facts := NutritionFacts{
		Calories: round1(totals["Energi"]),
		Protein:  round1(totals["Protein"]),
		Carbs:    round1(totals["Karbohidrat"]),
		Fat:      round1(totals["Lemak"]),
		Sugar:    round1(totals["Gula"]),
	}

	return MealAnalysis{
		AnalysisID:     common.ShortID("ana"),
		FoodLogID:      logID,
		NutritionFacts: facts,
		Micronutrients: Micronutrients{
			VitaminC: round1(totals["Vitamin C"]),
			Iron:     round1(totals["Besi"]),
		},
		HealthTags: healthTags(facts),
	}
}

// healthTags labels the meal from its macro totals
func healthTags(facts NutritionFacts) []string {
	tags := make([]string, 0, 3)
	if facts.Protein >= 20 {
		tags = append(tags, "High Protein")
	}
	if facts.Sugar <= 5 {
		tags = append(tags, "Low Sugar")
	}
	if facts.Calories >= 700 {
		tags = append(tags, "High Calorie")
	}
	return tags
}

// MealTypeFor infers the meal type from the local hour of the timestamp
func MealTypeFor(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 4 && hour < 11:
		return "Sarapan"
	case hour >= 11 && hour < 16:
		return "Makan Siang"
	case hour >= 16 && hour < 22:
		return "Makan Malam"
	default:
		return "Camilan"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
