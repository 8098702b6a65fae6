package entity

import (
	"time"
)

// Category 产品分类（支持多级）
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:64;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:255"`
	ParentID    *string   `json:"parent_id" gorm:"type:uuid;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Category) TableName() string {
	return "categories"
}

// Product 产品
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:128;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url" gorm:"size:500"`
	Unit        string    `json:"unit" gorm:"size:20;default:卷"`
	HasVariants bool      `json:"has_variants" gorm:"not null;default:true"`
	CategoryID  *string   `json:"category_id" gorm:"type:uuid;index"`
	CostID      *string   `json:"cost_id" gorm:"type:uuid"` // 由成本记录转化而来时回溯用
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant 产品变体（规格/颜色维度的 SKU）
// ConductorWeight > 0 时参与按铜价自动调价
type ProductVariant struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID       string    `json:"product_id" gorm:"type:uuid;not null;index"`
	Spec            string    `json:"spec" gorm:"size:64;not null"`
	Color           string    `json:"color" gorm:"size:32"`
	Price           float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock           int       `json:"stock" gorm:"not null;default:0"`
	Unit            string    `json:"unit" gorm:"size:20;default:米"`
	SkuCode         string    `json:"sku_code" gorm:"size:64"`
	ConductorWeight float64   `json:"conductor_weight" gorm:"type:decimal(12,4);default:0"`
	ProcessCost     float64   `json:"process_cost" gorm:"type:decimal(12,2);default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
