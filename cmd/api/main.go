package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Jaime0506/app-maestro-detail/api/swagger" // swagger docs
	"github.com/Jaime0506/app-maestro-detail/internal/config"
	"github.com/Jaime0506/app-maestro-detail/internal/database"
	"github.com/Jaime0506/app-maestro-detail/internal/handler"
	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/metrics"
	"github.com/Jaime0506/app-maestro-detail/internal/middleware"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Maestro-Detail Invoicing API
// @version         1.0
// @description     Clients, products, invoices with their line items, and stock movements.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	seed := flag.Bool("seed", false, "insert the sample clients when the clientes table is empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zapLog, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Env,
		ServiceName: cfg.App.Name,
		OutputPath:  cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Connect(cfg.DB)
	if err != nil {
		zapLog.Fatal("Database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.DB); err != nil {
		zapLog.Fatal("Database migration failed", zap.Error(err))
	}
	zapLog.Info("Connected to database", zap.String("driver", cfg.DB.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	notifier := service.MultiNotifier{wsHub, service.LogNotifier{}}

	// Set up dependencies (Repository -> Service -> Handler)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	txManager := repository.NewTransactionManager(db)

	clientService := service.NewClientService(clientRepo, notifier)
	productService := service.NewProductService(productRepo, notifier)
	invoiceService := service.NewInvoiceService(invoiceRepo, movementRepo, productRepo, txManager, notifier)
	movementService := service.NewMovementService(movementRepo, invoiceRepo, productRepo, txManager, notifier)
	catalogService := service.NewCatalogService(clientRepo, productRepo)
	statisticsService := service.NewStatisticsService(statsRepo, movementRepo)

	if *seed {
		if err := seedClients(ctx, clientService); err != nil {
			zapLog.Fatal("Seeding failed", zap.Error(err))
		}
	}

	// Initialize Handlers
	clientHandler := handler.NewClientHandler(clientService)
	productHandler := handler.NewProductHandler(productService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, catalogService)
	movementHandler := handler.NewMovementHandler(movementService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zapLog), middleware.Metrics())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", handler.IdempotencyKeyHeader, logger.RequestIDKey}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	secret := []byte(cfg.Auth.JWTSecret)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// API Routing
	api := router.Group("/api")
	if cfg.Auth.Enabled() {
		api.Use(middleware.RequireAuth(secret))
	} else {
		zapLog.Warn("JWT_SECRET not set, API routes are unauthenticated")
	}
	clientHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	movementHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
