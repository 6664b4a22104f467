package food

import (
	"net/http"

	"nutrimori-ai/internal/core/food"

	"github.com/gin-gonic/gin"
)

// RecommendRequest scores a food catalog against a weekly analysis and
// the user's preferences
type RecommendRequest struct {
	WeeklyAnalysis food.WeeklyAnalysis `json:"weekly_analysis"`
	Preferences    food.Preferences    `json:"preferences"`
	Catalog        []food.CatalogItem  `json:"catalog" binding:"required"`
	TopK           int                 `json:"top_k"`
}

// RecommendResponse lists today's suggestions, best first
type RecommendResponse struct {
	Recommendations []food.Recommendation `json:"recommendations"`
}

// HandleRecommend composes the daily food suggestions
func (h *Handler) HandleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	recommendations := food.RecommendDaily(req.WeeklyAnalysis, req.Preferences, req.Catalog, req.TopK)

	c.JSON(http.StatusOK, RecommendResponse{Recommendations: recommendations})
}
