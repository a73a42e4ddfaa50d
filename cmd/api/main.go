package main

import (
	"context"
	"net/http"
	"os"

	_ "pricing/api/swagger" // swagger docs
	"pricing/internal/cache"
	"pricing/internal/config"
	"pricing/internal/database"
	"pricing/internal/handler"
	"pricing/internal/middleware"
	"pricing/internal/repository"
	"pricing/internal/service"
	"pricing/internal/websocket"
	"pricing/pkg/logger"
	"pricing/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Pricing API
// @version         1.0
// @description     Shipping cost and VAT rate computation for checkout.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		logger.NewForEnvironment("", "info").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level)
	if cfg.Log.Format != "" {
		log = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetJWTSecret(cfg.JWT.Secret)

	db, err := database.NewConnection(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")

	// Repositories
	taxRateRepo := repository.NewTaxRateRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	if cfg.Database.SeedData {
		n, err := database.SeedTaxRates(context.Background(), taxRateRepo)
		if err != nil {
			log.Fatal("tax rate seeding failed", zap.Error(err))
		}
		if n > 0 {
			log.Info("seeded tax rates", zap.Int("count", n))
		}
	}

	rateCache := newTaxRateCache(cfg, log)

	shippingTables, err := config.LoadShippingTables(cfg.Pricing.ShippingTablesFile)
	if err != nil {
		log.Fatal("failed to load shipping tables", zap.String("file", cfg.Pricing.ShippingTablesFile), zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Services
	shippingService := service.NewShippingService(shippingTables, log)
	taxService := service.NewTaxService(taxRateRepo, auditRepo, txManager, rateCache, wsHub, log)
	priceService := service.NewPriceService(taxService, log)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	shippingHandler := handler.NewShippingHandler(shippingService)
	taxHandler := handler.NewTaxHandler(taxService)
	priceHandler := handler.NewPriceHandler(priceService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(logger.GinMiddleware(log), logger.Recovery(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"status": "OK"}))
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	api := router.Group("")
	shippingHandler.RegisterRoutes(api)
	taxHandler.RegisterRoutes(api)
	priceHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	log.Info("server listening", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

// newTaxRateCache prefers Redis when configured and falls back to an in-process cache.
func newTaxRateCache(cfg *config.Config, log *zap.Logger) cache.TaxRateCache {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryTaxRateCache(cfg.Pricing.TaxRateCacheTTL)
	}

	redisCache, err := cache.NewRedisTaxRateCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Pricing.TaxRateCacheTTL, log.Named("cache"))
	if err != nil {
		log.Warn("redis unavailable, using in-memory tax rate cache", zap.Error(err))
		return cache.NewMemoryTaxRateCache(cfg.Pricing.TaxRateCacheTTL)
	}
	log.Info("tax rate cache backed by Redis", zap.String("addr", cfg.Redis.Addr))
	return redisCache
}
