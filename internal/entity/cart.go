package entity

import (
	"time"
)

// CartItem 购物车条目，同一用户同一变体只保留一行（再次加入累加数量）
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_variant"`
	VariantID string    `json:"variant_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_variant"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Variant *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
