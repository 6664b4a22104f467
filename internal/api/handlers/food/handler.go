// Package food exposes the mention resolution pipeline over HTTP
package food

import (
	"net/http"

	"nutrimori-ai/internal/core/food"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler serves the food resolution endpoints
type Handler struct {
	config     *config.Config
	resolver   *food.Resolver
	calculator *food.Calculator
	aggregator *food.Aggregator
}

// NewHandler creates the food handler
func NewHandler(cfg *config.Config, resolver *food.Resolver, calculator *food.Calculator, aggregator *food.Aggregator) *Handler {
	return &Handler{
		config:     cfg,
		resolver:   resolver,
		calculator: calculator,
		aggregator: aggregator,
	}
}

// respondError writes the standard error body for a CustomError
func respondError(c *gin.Context, err *common.CustomError) {
	c.JSON(err.Status, gin.H{
		"error": err.Message,
		"code":  err.Code,
	})
}

// respondBadRequest writes a 400 with the binding or validation detail
func respondBadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request",
		"code":    common.ErrCodeInvalidRequest,
		"details": detail,
	})
}
