package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 业务服务集合
type Services struct {
	Auth    *AuthService
	User    *UserService
	Catalog *CatalogService
	Cart    *CartService
	Order   *OrderService
	Inquiry *InquiryService
	Cost    *CostService
	Market  *MarketService
	News    *NewsService
	Media   *MediaStore
}

func NewServices(
	repos *repository.Repositories,
	db *gorm.DB,
	rdb *redis.Client,
	minioClient *minio.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *Services {
	var media *MediaStore
	if minioClient != nil {
		media = NewMediaStore(minioClient, cfg.MinIO.Bucket, cfg.MinIO.PublicBaseURL())
	}

	engine := NewPricingEngine(cfg.Pricing)
	market := NewMarketService(repos.Market, rdb, cfg.Market, logger)

	return &Services{
		Auth:    NewAuthService(repos.User, rdb, cfg.JWT.Secret, cfg.JWT.AccessTokenExpire),
		User:    NewUserService(repos.User),
		Catalog: NewCatalogService(repos.Catalog, repos.Cost, media),
		Cart:    NewCartService(repos.Cart, repos.Catalog),
		Order:   NewOrderService(repos.Order, repos.Cart, repos.User, media, db),
		Inquiry: NewInquiryService(repos.Inquiry, repos.Cart, db),
		Cost:    NewCostService(repos.Cost, repos.Catalog, market, engine, db, logger),
		Market:  market,
		News:    NewNewsService(repos.News),
		Media:   media,
	}
}
