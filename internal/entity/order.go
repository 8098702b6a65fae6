package entity

import (
	"time"
)

// OrderStatus 订单状态
const (
	OrderStatusPending    = "PENDING_CONFIRMATION"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusDelivering = "DELIVERING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Order 销售订单
type Order struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID           string    `json:"user_id" gorm:"type:uuid;not null;index"`
	DriverID         *string   `json:"driver_id" gorm:"type:uuid;index"`
	Status           string    `json:"status" gorm:"size:24;not null;default:PENDING_CONFIRMATION"`
	OriginalTotal    float64   `json:"original_total_price" gorm:"type:decimal(12,2);not null;default:0"`
	FinalTotal       float64   `json:"final_total_price" gorm:"type:decimal(12,2);not null;default:0"`
	DriverLat        *float64  `json:"driver_lat"`
	DriverLng        *float64  `json:"driver_lng"`
	DeliveryPhotoURL string    `json:"delivery_photo_url" gorm:"size:500"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	User   *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Driver *User       `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// IsTerminal 是否终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// OrderItem 订单明细，下单时对变体/产品数据做快照。
// VariantID 冗余保存用于确认订单时精确扣库存，变体被删除后可为空，
// 此时回退到 (product_id, spec, color) 匹配。
type OrderItem struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderID      string    `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID    *string   `json:"product_id" gorm:"type:uuid"`
	VariantID    *string   `json:"variant_id" gorm:"type:uuid"`
	ProductName  string    `json:"product_name" gorm:"size:128;not null"`
	ProductSpec  string    `json:"product_spec" gorm:"size:64"`
	ProductColor string    `json:"product_color" gorm:"size:32"`
	ProductImage string    `json:"product_image" gorm:"size:500"`
	ProductUnit  string    `json:"product_unit" gorm:"size:20"`
	UnitPrice    float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	Subtotal     float64   `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
