package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/handler"
	"github.com/rein-lin153/CableWeb/internal/middleware"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting cableweb service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
		&entity.ProductVariant{},
		&entity.CartItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Inquiry{},
		&entity.InquiryItem{},
		&entity.CostRecord{},
		&entity.MarketPriceReading{},
		&entity.News{},
		&entity.TechnicalSpec{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 初始化 Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, token blocklist and market cache disabled", zap.Error(err))
		rdb = nil
	}

	// 初始化 MinIO
	minioClient, err := initMinio(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO unavailable, image upload disabled", zap.Error(err))
		minioClient = nil
	}

	// 组装仓储、服务、处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, minioClient, cfg, zapLogger)
	handlers := handler.NewHandlers(services, zapLogger)

	if services.Media != nil {
		if err := services.Media.EnsureBucket(context.Background()); err != nil {
			zapLogger.Warn("Ensure bucket failed", zap.Error(err))
		}
	}

	// 后台行情抓取
	marketCtx, stopMarket := context.WithCancel(context.Background())
	defer stopMarket()
	go services.Market.Run(marketCtx)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopMarket()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinio(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, rdb *redis.Client) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	api := r.Group("/api")

	// 公开接口
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/categories", h.Catalog.ListCategories)
	api.GET("/products", h.Catalog.ListProducts)
	api.GET("/products/:id", h.Catalog.GetProduct)
	api.GET("/news", h.News.List)
	api.GET("/news/:id", h.News.Get)
	api.GET("/specs", h.News.ListSpecs)
	api.GET("/market/copper", h.Market.Latest)
	api.GET("/market/copper/history", h.Market.History)

	// 登录后接口
	auth := api.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb))
	{
		auth.POST("/auth/logout", h.Auth.Logout)
		auth.GET("/auth/me", h.Auth.Me)

		auth.GET("/cart", h.Cart.List)
		auth.POST("/cart/items", h.Cart.Add)
		auth.PUT("/cart/items/:id", h.Cart.UpdateQuantity)
		auth.DELETE("/cart/items/:id", h.Cart.Remove)
		auth.DELETE("/cart", h.Cart.Clear)

		auth.POST("/orders", h.Order.Create)
		auth.GET("/orders", h.Order.List)
		auth.GET("/orders/:id", h.Order.Get)

		auth.POST("/inquiries", h.Inquiry.Create)
		auth.GET("/inquiries", h.Inquiry.List)
		auth.GET("/inquiries/:id", h.Inquiry.Get)
		auth.POST("/inquiries/:id/respond", h.Inquiry.Respond)
	}

	// 司机接口
	driver := api.Group("/driver")
	driver.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb), middleware.RequireRole("driver"))
	{
		driver.PUT("/orders/:id/location", h.Order.UpdateLocation)
		driver.POST("/orders/:id/complete", h.Order.Complete)
	}

	// 管理接口
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb), middleware.RequireAdmin())
	{
		admin.GET("/users", h.User.List)
		admin.GET("/users/:id", h.User.Get)
		admin.PUT("/users/:id", h.User.Update)
		admin.GET("/drivers", h.User.ListDrivers)

		admin.POST("/categories", h.Catalog.CreateCategory)
		admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)

		admin.POST("/products", h.Catalog.CreateProduct)
		admin.PUT("/products/:id", h.Catalog.UpdateProduct)
		admin.DELETE("/products/:id", h.Catalog.DeleteProduct)
		admin.POST("/products/:id/image", h.Catalog.UploadProductImage)
		admin.POST("/products/from-cost", h.Catalog.PromoteFromCost)

		admin.POST("/orders/:id/confirm", h.Order.Confirm)
		admin.POST("/orders/:id/ship", h.Order.Ship)
		admin.POST("/orders/:id/cancel", h.Order.Cancel)
		admin.POST("/orders/:id/driver", h.Order.AssignDriver)
		admin.PUT("/orders/:id/items/:itemId/price", h.Order.RepriceItem)
		admin.POST("/orders/:id/complete", h.Order.Complete)
		admin.GET("/orders/export", h.Order.Export)

		admin.POST("/inquiries/:id/quote", h.Inquiry.Quote)
		admin.POST("/inquiries/:id/close", h.Inquiry.Close)

		admin.GET("/costs", h.Cost.List)
		admin.GET("/costs/categories", h.Cost.Categories)
		admin.GET("/costs/suggested-price", h.Cost.SuggestedPrice)
		admin.GET("/costs/export", h.Cost.Export)
		admin.POST("/costs", h.Cost.Create)
		admin.GET("/costs/:id", h.Cost.Get)
		admin.PUT("/costs/:id", h.Cost.Update)
		admin.DELETE("/costs/:id", h.Cost.Delete)
		admin.POST("/costs/sync-market", h.Cost.SyncMarket)
		admin.POST("/costs/sync-variant-prices", h.Cost.SyncVariantPrices)

		admin.POST("/market/refresh", h.Market.Refresh)

		admin.POST("/news", h.News.Create)
		admin.PUT("/news/:id", h.News.Update)
		admin.DELETE("/news/:id", h.News.Delete)
		admin.POST("/specs", h.News.CreateSpec)
		admin.PUT("/specs/:id", h.News.UpdateSpec)
		admin.DELETE("/specs/:id", h.News.DeleteSpec)
	}
}
