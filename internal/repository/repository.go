package repository

import (
	"gorm.io/gorm"
)

// Repositories 数据访问层集合
type Repositories struct {
	User    *UserRepository
	Catalog *CatalogRepository
	Cart    *CartRepository
	Order   *OrderRepository
	Inquiry *InquiryRepository
	Cost    *CostRepository
	Market  *MarketRepository
	News    *NewsRepository
}

// NewRepositories 创建数据访问层集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Catalog: NewCatalogRepository(db),
		Cart:    NewCartRepository(db),
		Order:   NewOrderRepository(db),
		Inquiry: NewInquiryRepository(db),
		Cost:    NewCostRepository(db),
		Market:  NewMarketRepository(db),
		News:    NewNewsRepository(db),
	}
}
