package corpus

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// NutrientColumns is the full nutrient set carried by corpus records,
// per-100g values as stored in the composition table.
var NutrientColumns = []string{
	// Macros
	"Energi", "Protein", "Lemak", "Karbohidrat", "Serat", "Air",

	// Minerals
	"Kalsium", "Fosfor", "Besi", "Natrium", "Kalium",
	"Tembaga", "Seng", "Abu",

	// Vitamins
	"Vitamin C", "Vitamin B1", "Vitamin B2", "Niasin",
	"Retinol", "Beta-karoten", "Karoten total",
}

// FoodRecord is one immutable food-composition entry. Nutrients hold
// per-100g values; Embedding is optional and only used by the local index.
type FoodRecord struct {
	ID             int64              `json:"food_id"`
	Name           string             `json:"nama"`
	NormalizedName string             `json:"nama_clean"`
	Nutrients      map[string]float64 `json:"nutrition_data"`
	EdibleFraction *float64           `json:"edible_fraction,omitempty"`
	Embedding      []float32          `json:"embedding,omitempty"`
}

// Store is a read-only collection of food records, initialized once at
// startup and shared across requests.
type Store struct {
	records []FoodRecord
	byID    map[int64]*FoodRecord
}

// Load reads the corpus JSON file and builds the id lookup
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var records []FoodRecord
	if err := common.ParseJSONBytes(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no records", path)
	}

	store := &Store{
		records: records,
		byID:    make(map[int64]*FoodRecord, len(records)),
	}
	for i := range store.records {
		rec := &store.records[i]
		if rec.NormalizedName == "" {
			rec.NormalizedName = NormalizeName(rec.Name)
		}
		store.byID[rec.ID] = rec
	}

	common.LogInfo("corpus loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)

	return store, nil
}

// GetByID returns the record for id, or nil when unknown
func (s *Store) GetByID(id int64) *FoodRecord {
	return s.byID[id]
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// All returns the underlying records. Callers must not mutate them.
func (s *Store) All() []FoodRecord {
	return s.records
}

// NormalizeName lowercases a display name and strips punctuation, matching
// the grouping key used during corpus build.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
