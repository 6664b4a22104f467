package food

import (
	"strings"
)

// unitTable maps portion units to grams per unit. Weights are common
// serving approximations for the Indonesian food-composition corpus.
var unitTable = map[string]float64{
	"porsi":   150,
	"piring":  150,
	"mangkuk": 250,
	"mangkok": 250,
	"potong":  80,
	"bungkus": 75,
	"sendok":  12,
	"butir":   60,
	"gelas":   200,
	"buah":    100,
	"slice":   30,
}

// gramUnits are treated as identity: the quantity already is the weight
var gramUnits = map[string]bool{
	"gram": true,
	"g":    true,
	"gr":   true,
}

// ToGrams converts a (quantity, unit) portion into a gram weight. Unknown
// units, including the empty string, fall back to 100g per unit, so every
// input resolves to some weight. foodNameHint is an extension point for
// per-food overrides; the table lookup does not use it.
func ToGrams(quantity float64, unit string, foodNameHint string) float64 {
	unit = strings.ToLower(strings.TrimSpace(unit))

	if grams, ok := unitTable[unit]; ok {
		return quantity * grams
	}

	if gramUnits[unit] {
		return quantity
	}

	// Assume one generic unit is roughly 100g
	return quantity * 100
}
