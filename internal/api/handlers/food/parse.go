package food

import (
	"net/http"

	"nutrimori-ai/internal/core/food"
	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParseRequest resolves a single food mention and computes its nutrition.
// Quantity defaults to 1, unit to the configured default.
type ParseRequest struct {
	Text     string  `json:"text" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ParseResponse is the resolved food with scaled nutrition
type ParseResponse struct {
	Success   bool                  `json:"success"`
	Matches   []search.Match        `json:"matches"`
	Method    string                `json:"method"`
	Nutrition *food.NutritionResult `json:"nutrition"`
}

// HandleParse runs the two-attempt resolution for one mention and scales
// the winning nutrition to the requested portion
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	unit := req.Unit
	if unit == "" {
		unit = h.config.Search.DefaultUnit
	}

	resolution := h.resolver.Resolve(c.Request.Context(), req.Text, h.config.Search.TopK)

	if resolution.Method == food.MethodError {
		common.LogWarn("parse request failed",
			zap.String("text", req.Text),
		)
		respondError(c, common.ErrCollaboratorFailure)
		return
	}
	if len(resolution.Matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   common.ErrNoMatchFound.Message,
			"code":    common.ErrNoMatchFound.Code,
		})
		return
	}

	nutrition, err := h.calculator.ComputeSmart(resolution.Matches, quantity, unit)
	if err != nil {
		common.LogError("nutrition computation failed",
			zap.String("text", req.Text),
			zap.Error(err),
		)
		respondError(c, common.ErrInternalError)
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Success:   true,
		Matches:   resolution.Matches,
		Method:    string(resolution.Method),
		Nutrition: nutrition,
	})
}
