package food

import (
	"net/http"
	"time"

	"nutrimori-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogRequest records one meal utterance. Timestamp is RFC3339 and
// defaults to now; it decides the inferred meal type.
type LogRequest struct {
	Text      string `json:"text" binding:"required"`
	Timestamp string `json:"timestamp"`
}

// HandleLog runs the full meal pipeline: split, resolve, compute
// nutrition and aggregate
func (h *Handler) HandleLog(c *gin.Context) {
	var req LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	loggedAt := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			respondBadRequest(c, "timestamp must be RFC3339")
			return
		}
		loggedAt = parsed
	}

	result, err := h.aggregator.Process(c.Request.Context(), req.Text, loggedAt)
	if err != nil {
		if common.IsValidationError(err) {
			respondBadRequest(c, err.Error())
			return
		}
		common.LogError("meal processing failed",
			zap.String("text", req.Text),
			zap.Error(err),
		)
		respondError(c, common.ErrInternalError)
		return
	}

	c.JSON(http.StatusOK, result)
}
