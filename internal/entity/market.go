package entity

import (
	"time"
)

// MarketPriceReading 铜价行情采样，只追加不修改，最新一条即当前行情
type MarketPriceReading struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CnyPrice     float64   `json:"cny_price" gorm:"type:decimal(12,2);not null"`
	UsdPrice     float64   `json:"usd_price" gorm:"type:decimal(12,2);not null"`
	ExchangeRate float64   `json:"exchange_rate" gorm:"type:decimal(12,4);not null"`
	CapturedAt   time.Time `json:"captured_at" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MarketPriceReading) TableName() string {
	return "market_price_readings"
}
