package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/handler"
	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/middleware"
	"github.com/stemsi/exstem-prep/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Bank    *handler.BankHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(response.Recovery(log))

	if cfg.MetricsEnabled {
		metrics.Init()
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	if cfg.RateLimitPerMinute > 0 {
		api.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware())
	}

	// ─── 1. Bank (read-only, fixed for the process lifetime) ───────────
	bank := api.Group("/bank")
	bank.Use(middleware.CacheControl(300))
	{
		bank.GET("/summary", handlers.Bank.GetSummary)
		bank.GET("/allocation", handlers.Bank.GetAllocation)
	}

	// ─── 2. Session ────────────────────────────────────────────────────
	sessionAPI := api.Group("")
	sessionAPI.Use(middleware.NoStore())
	{
		sessionAPI.GET("/state", handlers.Session.GetState)
		sessionAPI.POST("/home", handlers.Session.Home)

		exam := sessionAPI.Group("/exam")
		{
			exam.POST("/start", handlers.Session.StartExam)
			exam.POST("/submit", handlers.Session.SubmitExam)
			exam.POST("/submit/confirm", handlers.Session.ConfirmSubmit)
			exam.POST("/submit/cancel", handlers.Session.CancelSubmit)
			exam.POST("/submit/jump-flagged", handlers.Session.JumpToFlagged)
		}

		practice := sessionAPI.Group("/practice")
		{
			practice.POST("/configure", handlers.Session.ConfigurePractice)
			practice.POST("/start", handlers.Session.StartPractice)
			practice.POST("/finish", handlers.Session.FinishPractice)
		}

		current := sessionAPI.Group("/session")
		{
			current.POST("/answer", handlers.Session.Answer)
			current.POST("/flag", handlers.Session.ToggleFlag)
			current.POST("/navigate", handlers.Session.Navigate)
			current.POST("/next", handlers.Session.Next)
			current.POST("/prev", handlers.Session.Prev)
			current.GET("/export.csv", handlers.Session.ExportCSV)
		}

		hist := sessionAPI.Group("/history")
		{
			hist.GET("", handlers.Session.ListHistory)
			hist.POST("", handlers.Session.OpenHistory)
			hist.POST("/:entry_id/review", handlers.Session.ReviewHistory)
		}
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}
