package food

import (
	"context"
	"sort"
	"strings"

	"nutrimori-ai/internal/core/llm"
	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// resolveState drives the escalation loop. Each resolve walks the states
// in order and stops as soon as an attempt is good enough.
type resolveState int

const (
	stateDirect resolveState = iota
	stateLLM
	stateDone
)

// Resolver maps one food mention to ranked corpus candidates. The first
// attempt searches the raw mention text; when its best similarity stays
// below the escalation threshold, a second attempt searches candidate
// names produced by the generator and returns whatever it finds.
type Resolver struct {
	config    *config.Config
	index     search.Index
	generator llm.CandidateGenerator
}

// NewResolver creates a mention resolver
func NewResolver(cfg *config.Config, index search.Index, generator llm.CandidateGenerator) *Resolver {
	return &Resolver{
		config:    cfg,
		index:     index,
		generator: generator,
	}
}

// Resolve runs the escalation loop for one mention. The result is always
// well formed: a failed search yields MethodError with no matches, an
// empty corpus yields MethodNone, and a generator failure falls back to
// searching the raw text under MethodLLMEnhanced.
func (r *Resolver) Resolve(ctx context.Context, mentionText string, topK int) *Resolution {
	mentionText = strings.TrimSpace(mentionText)
	if mentionText == "" {
		return &Resolution{Matches: []search.Match{}, Method: MethodNone}
	}
	if topK <= 0 {
		topK = r.config.Search.TopK
	}

	resolution := &Resolution{Matches: []search.Match{}, Method: MethodNone}
	searchFailed := false

	for state := stateDirect; state != stateDone; {
		switch state {
		case stateDirect:
			matches, err := r.aggregate(ctx, []string{mentionText}, topK)
			if err != nil {
				common.LogWarn("direct search failed",
					zap.String("mention", mentionText),
					zap.Error(err),
				)
				searchFailed = true
				state = stateLLM
				continue
			}

			if len(matches) > 0 && matches[0].Similarity >= r.config.Search.EscalationThreshold {
				resolution.Matches = matches
				resolution.Method = MethodDirect
				resolution.SearchTerms = []string{mentionText}
				state = stateDone
				continue
			}

			common.LogDebug("escalating to candidate generation",
				zap.String("mention", mentionText),
				zap.Float64("top_similarity", topSimilarity(matches)),
			)
			state = stateLLM

		case stateLLM:
			terms, err := r.generator.Generate(ctx, mentionText)
			if err != nil || len(terms) == 0 {
				// The raw text is the only candidate we still have
				common.LogWarn("candidate generation failed, falling back to raw mention",
					zap.String("mention", mentionText),
					zap.Error(err),
				)
				terms = []string{mentionText}
			}

			matches, err := r.aggregate(ctx, terms, topK)
			if err != nil {
				common.LogError("candidate search failed",
					zap.String("mention", mentionText),
					zap.Error(err),
				)
				resolution.Method = MethodError
				state = stateDone
				continue
			}

			resolution.SearchTerms = terms
			if len(matches) > 0 {
				resolution.Matches = matches
				resolution.Method = MethodLLMEnhanced
			} else if searchFailed {
				resolution.Method = MethodError
			}
			state = stateDone
		}
	}

	common.LogInfo("mention resolved",
		zap.String("mention", mentionText),
		zap.String("method", string(resolution.Method)),
		zap.Int("matches", len(resolution.Matches)),
		zap.Float64("top_similarity", resolution.TopSimilarity()),
	)

	return resolution
}

// aggregate searches every term, merges the results deduplicated by food
// id (first occurrence wins), and returns the topK by similarity. It
// errors only when every term fails.
func (r *Resolver) aggregate(ctx context.Context, terms []string, topK int) ([]search.Match, error) {
	seen := make(map[int64]bool)
	merged := make([]search.Match, 0, topK*len(terms))
	var lastErr error
	failures := 0

	for _, term := range terms {
		matches, err := r.index.Search(ctx, term, topK)
		if err != nil {
			failures++
			lastErr = err
			common.LogWarn("search term failed",
				zap.String("term", term),
				zap.Error(err),
			)
			continue
		}
		for _, m := range matches {
			if seen[m.FoodID] {
				continue
			}
			seen[m.FoodID] = true
			merged = append(merged, m)
		}
	}

	if failures == len(terms) && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}

	return merged, nil
}

func topSimilarity(matches []search.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	return matches[0].Similarity
}
