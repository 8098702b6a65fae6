package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type MarketRepository struct {
	db *gorm.DB
}

func NewMarketRepository(db *gorm.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// Append 追加一条行情采样
func (r *MarketRepository) Append(reading *entity.MarketPriceReading) error {
	return r.db.Create(reading).Error
}

// Latest 最近一次成功采样，没有记录时返回 gorm.ErrRecordNotFound
func (r *MarketRepository) Latest() (*entity.MarketPriceReading, error) {
	var reading entity.MarketPriceReading
	err := r.db.Order("captured_at DESC").First(&reading).Error
	return &reading, err
}

// History 按时间倒序取最近 n 条采样
func (r *MarketRepository) History(n int) ([]entity.MarketPriceReading, error) {
	if n <= 0 {
		n = 24
	}
	var readings []entity.MarketPriceReading
	err := r.db.Order("captured_at DESC").Limit(n).Find(&readings).Error
	return readings, err
}
