package food

import (
	"net/http"

	"nutrimori-ai/internal/core/food"
	"nutrimori-ai/internal/core/search"

	"github.com/gin-gonic/gin"
)

// MatchRequest resolves every food mention in a free-text utterance
type MatchRequest struct {
	Text  string `json:"text" binding:"required"`
	Limit int    `json:"limit"`
}

// MentionMatches is the resolution outcome for one detected mention
type MentionMatches struct {
	Mention     food.Mention   `json:"mention"`
	Matches     []search.Match `json:"matches"`
	Method      string         `json:"method"`
	SearchTerms []string       `json:"search_terms,omitempty"`
}

// MatchResponse lists per-mention match lists in utterance order
type MatchResponse struct {
	Results []MentionMatches `json:"results"`
}

// HandleMatch splits the text into mentions and runs the two-attempt
// resolution for each. Unresolvable mentions stay in the response with
// their method set; only an empty utterance is an error.
func (h *Handler) HandleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	mentions := food.SplitMentions(req.Text, h.config.Search.DefaultUnit)
	if len(mentions) == 0 {
		respondBadRequest(c, "input text is empty")
		return
	}

	results := make([]MentionMatches, 0, len(mentions))
	for _, mention := range mentions {
		resolution := h.resolver.Resolve(c.Request.Context(), mention.Name, req.Limit)
		results = append(results, MentionMatches{
			Mention:     mention,
			Matches:     resolution.Matches,
			Method:      string(resolution.Method),
			SearchTerms: resolution.SearchTerms,
		})
	}

	c.JSON(http.StatusOK, MatchResponse{Results: results})
}
