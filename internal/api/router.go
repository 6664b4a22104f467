package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	foodHandler "nutrimori-ai/internal/api/handlers/food"
	"nutrimori-ai/internal/api/handlers/health"
	"nutrimori-ai/internal/api/middleware"
	"nutrimori-ai/internal/core/corpus"
	"nutrimori-ai/internal/core/food"
	"nutrimori-ai/internal/core/llm"
	"nutrimori-ai/internal/core/llm/cache"
	"nutrimori-ai/internal/core/search"
	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Per-request timeout, covers search plus candidate generation
	timeoutDuration = 60 * time.Second
	// Request body size limit (1MB); inputs are short text, not media
	maxBodySize = 1 << 20
)

// SetupRouter wires the full pipeline and registers the routes. The
// returned cleanup releases the queue, cache, index and embedder and must
// run on shutdown.
func SetupRouter(cfg *config.Config, candidateCache cache.Cache) (*gin.Engine, func(), error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.String("search_backend", cfg.Search.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	store, err := corpus.Load(cfg.Search.CorpusPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load food corpus: %w", err)
	}

	embedder := search.NewHugotEmbedder(cfg.Search.ModelPath)

	var index search.Index
	var remoteIndex *search.PgVectorIndex
	switch cfg.Search.Backend {
	case "remote":
		remoteIndex, err = search.NewPgVectorIndex(cfg.Search.PostgresDSN, embedder, cfg.Search.MatchThreshold)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize pgvector index: %w", err)
		}
		index = remoteIndex
	default:
		index, err = search.NewLocalIndex(store, embedder)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build local index: %w", err)
		}
	}

	queue := llm.NewQueue(cfg, llm.NewOpenRouterClient(cfg))
	queue.Start()

	generator := llm.NewService(cfg, queue, candidateCache)
	resolver := food.NewResolver(cfg, index, generator)
	calculator := food.NewCalculator(cfg, store)
	aggregator := food.NewAggregator(cfg, resolver, calculator)

	cleanup := func() {
		queue.Close()
		if remoteIndex != nil {
			if err := remoteIndex.Close(); err != nil {
				common.LogWarn("failed to close pgvector index", zap.Error(err))
			}
		}
		if err := embedder.Close(); err != nil {
			common.LogWarn("failed to close embedder", zap.Error(err))
		}
	}

	// Per-request timeout plus context injection for the health handlers
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)
		c.Set("llm_queue", queue)
		c.Set("corpus_size", store.Len())

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		handler := foodHandler.NewHandler(cfg, resolver, calculator, aggregator)

		foodGroup := api.Group("/food")
		{
			foodGroup.POST("/match", handler.HandleMatch)
			foodGroup.POST("/parse", handler.HandleParse)
			foodGroup.POST("/log", handler.HandleLog)
			foodGroup.POST("/recommend", handler.HandleRecommend)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("search_backend", cfg.Search.Backend),
		zap.Int("corpus_records", store.Len()),
		zap.Bool("cache_enabled", candidateCache != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, cleanup, nil
}
