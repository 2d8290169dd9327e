package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-importer/internal/api/handlers/health"
	importHandler "recipe-importer/internal/api/handlers/importer"
	"recipe-importer/internal/api/middleware"
	"recipe-importer/internal/core/ai/cache"
	"recipe-importer/internal/core/ai/service"
	"recipe-importer/internal/core/importer"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)，匯入請求只帶一個 URL
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheStore cache.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 重複請求與速率限制
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		router.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("ai_fallback_enabled", cfg.Import.AIFallbackEnabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Duration("fetch_timeout", cfg.Import.FetchTimeout),
	)

	// 初始化 AI 服務，僅在啟用 AI 回退時建立
	var aiService importer.CompletionService
	if cfg.Import.AIFallbackEnabled {
		svc, err := service.NewService(cfg, cacheStore)
		if err != nil || svc == nil {
			common.LogError("Failed to initialize AI service", zap.Error(err))
			return nil, fmt.Errorf("failed to initialize AI service: %w", err)
		}
		aiService = svc
	}

	// 初始化匯入管線
	pipeline := importer.NewPipeline(cfg.Import, aiService)
	if pipeline == nil {
		common.LogError("Failed to initialize import pipeline")
		return nil, fmt.Errorf("failed to initialize import pipeline")
	}

	common.LogInfo("Import pipeline initialized successfully",
		zap.Bool("ai_service_initialized", aiService != nil),
		zap.Bool("cache_store_initialized", cacheStore != nil),
		zap.String("environment", cfg.App.Env),
	)

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		// 創建新的請求上下文
		req := c.Request.WithContext(ctx)
		c.Request = req

		// 設置配置
		c.Set("config", cfg)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		importHandlerInstance := importHandler.NewHandler(pipeline)

		recipeGroup := api.Group("/recipes")
		{
			// 從來源網址匯入食譜
			recipeGroup.POST("/import", importHandlerInstance.HandleImport)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("ai_service_initialized", aiService != nil),
		zap.Bool("cache_store_initialized", cacheStore != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
