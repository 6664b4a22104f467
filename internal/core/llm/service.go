package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutrimori-ai/internal/core/llm/cache"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

const candidatePrompt = `Act as a food-composition database expert (TKPI and USDA).
Map the user's food input to 3 candidate canonical names that exist in a food-composition database.

NAMING RULES:
1. Use the format "Main ingredient, specific detail, preparation method".
2. Remove quantities and units (e.g. "2 porsi", "setengah mangkok", "500 gram").
3. Prefer standard Indonesian (TKPI) terms; fall back to standard USDA translations.

User input: "%s"

Output ONLY a JSON array of strings.
Example of correct output: ["Daging ayam, dada, goreng", "Ayam, daging, paha, panggang", "Daging ayam, olahan, nugget"]`

// Service implements CandidateGenerator on top of the queued OpenRouter
// client with an optional candidate cache.
type Service struct {
	config *config.Config
	queue  *Queue
	cache  cache.Cache
}

// NewService creates the candidate generation service. cacheBackend may be
// nil when caching is disabled.
func NewService(cfg *config.Config, queue *Queue, cacheBackend cache.Cache) *Service {
	return &Service{
		config: cfg,
		queue:  queue,
		cache:  cacheBackend,
	}
}

// Generate returns candidate canonical names for text. Results are cached
// by normalized mention text. On any model failure the error is returned
// as-is; the resolver decides the fallback.
func (s *Service) Generate(ctx context.Context, text string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return nil, fmt.Errorf("empty mention text")
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached []string
			if err := common.ParseJSON(raw, &cached); err == nil && len(cached) > 0 {
				common.LogDebug("candidate cache hit", zap.String("mention", key))
				return cached, nil
			}
		}
	}

	start := time.Now()
	raw, err := s.queue.Do(ctx, fmt.Sprintf(candidatePrompt, text))
	common.LogLLMCall(text, time.Since(start), err, "")
	if err != nil {
		return nil, fmt.Errorf("candidate generation failed: %w", err)
	}

	candidates, err := parseCandidates(raw)
	if err != nil {
		return nil, fmt.Errorf("unusable candidate response: %w", err)
	}

	if s.config.Search.AppendRawQuery {
		candidates = append(candidates, text)
	}

	if s.cache != nil {
		if encoded, err := common.ToJSON(candidates); err == nil {
			_ = s.cache.Set(ctx, key, encoded)
		}
	}

	common.LogInfo("candidates generated",
		zap.String("mention", key),
		zap.Int("count", len(candidates)),
	)

	return candidates, nil
}

// parseCandidates extracts a non-empty string array from the model output
func parseCandidates(raw string) ([]string, error) {
	cleaned := common.QuoteJSONKeys(common.ExtractJSONArray(raw))

	var parsed []string
	if err := common.ParseJSON(cleaned, &parsed); err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(parsed))
	for _, c := range parsed {
		c = strings.TrimSpace(c)
		if c != "" {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	return candidates, nil
}
