package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) ListByUser(userID string) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := r.db.Preload("Variant").Preload("Variant.Product").
		Where("user_id = ?", userID).Order("created_at").Find(&items).Error
	return items, err
}

func (r *CartRepository) GetByID(id string) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.Where("id = ?", id).First(&item).Error
	return &item, err
}

func (r *CartRepository) GetByUserAndVariant(userID, variantID string) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.Where("user_id = ? AND variant_id = ?", userID, variantID).First(&item).Error
	return &item, err
}

func (r *CartRepository) Create(item *entity.CartItem) error {
	return r.db.Create(item).Error
}

func (r *CartRepository) Update(item *entity.CartItem) error {
	return r.db.Save(item).Error
}

// Remove 删除指定条目，限定归属用户
func (r *CartRepository) Remove(userID, itemID string) (int64, error) {
	res := r.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&entity.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) ClearByUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error
}
