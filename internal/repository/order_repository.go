package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByID(id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.Preload("Items").Preload("User").Preload("Driver").
		Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *OrderRepository) Update(o *entity.Order) error {
	return r.db.Save(o).Error
}

type OrderListParams struct {
	UserID   string
	DriverID string
	Status   string
	Keyword  string
	Page     int
	Size     int
}

func (r *OrderRepository) List(params OrderListParams) ([]entity.Order, int64, error) {
	query := r.db.Model(&entity.Order{})
	if params.UserID != "" {
		query = query.Where("orders.user_id = ?", params.UserID)
	}
	if params.DriverID != "" {
		query = query.Where("orders.driver_id = ?", params.DriverID)
	}
	if params.Status != "" {
		query = query.Where("orders.status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Joins("JOIN users ON users.id = orders.user_id").
			Where("users.email ILIKE ? OR orders.id::text ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.Order
	err := query.Preload("Items").Preload("User").Preload("Driver").
		Order("orders.created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// ListAll 不分页获取订单（导出用）
func (r *OrderRepository) ListAll() ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.Preload("Items").Preload("User").Preload("Driver").
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// GetItem 获取归属于指定订单的明细行
func (r *OrderRepository) GetItem(orderID, itemID string) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error
	return &item, err
}

// --- 事务内使用的辅助方法 ---

// LockVariantByID 在事务内按主键锁定变体行（SELECT ... FOR UPDATE），
// 订单确认/取消期间防止库存被并发修改
func LockVariantByID(tx *gorm.DB, variantID string) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", variantID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LockVariantByMatch 在事务内按 (product_id, spec, color) 锁定变体行。
// 老订单没有存 variant_id 时的兜底匹配。
func LockVariantByMatch(tx *gorm.DB, productID, spec, color string) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND spec = ? AND color = ?", productID, spec, color).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}
