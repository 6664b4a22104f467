package health

import (
	"net/http"
	"runtime"
	"time"

	"nutrimori-ai/internal/core/llm"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse is the full health check payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Search    *SearchStatus          `json:"search,omitempty"`
	Queue     *llm.Status            `json:"queue,omitempty"`
}

// SearchStatus reports the active search backend and corpus size
type SearchStatus struct {
	Backend       string `json:"backend"`
	CorpusRecords int    `json:"corpus_records"`
}

// HealthCheck reports process health, runtime stats and LLM queue state
func HealthCheck(c *gin.Context) {
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	appConfig, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   appConfig.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	response.Search = &SearchStatus{Backend: appConfig.Search.Backend}
	if size, exists := c.Get("corpus_size"); exists {
		if n, ok := size.(int); ok {
			response.Search.CorpusRecords = n
		}
	}

	if q, exists := c.Get("llm_queue"); exists {
		if queue, ok := q.(*llm.Queue); ok && queue != nil {
			response.Queue = queue.GetStatus()
		}
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck reports whether the service can take traffic
func ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck reports whether the process is alive
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
