package service

import (
	"errors"
	"fmt"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"gorm.io/gorm"
)

// CartService 购物车。同一用户同一变体只保留一行，重复加入合并数量。
type CartService struct {
	cartRepo    *repository.CartRepository
	catalogRepo *repository.CatalogRepository
}

func NewCartService(cartRepo *repository.CartRepository, catalogRepo *repository.CatalogRepository) *CartService {
	return &CartService{cartRepo: cartRepo, catalogRepo: catalogRepo}
}

// CartView 购物车视图
type CartView struct {
	Items []entity.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (s *CartService) List(userID string) (*CartView, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, it := range items {
		if it.Variant != nil {
			total += it.Variant.Price * float64(it.Quantity)
		}
	}
	return &CartView{Items: items, Total: Round2(total)}, nil
}

// Add 加入购物车，已有同变体则累加数量
func (s *CartService) Add(userID, variantID string, quantity int) (*entity.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("数量必须为正: %w", ErrValidation)
	}
	if _, err := s.catalogRepo.GetVariantByID(variantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("变体不存在: %w", ErrNotFound)
		}
		return nil, err
	}

	existing, err := s.cartRepo.GetByUserAndVariant(userID, variantID)
	if err == nil {
		existing.Quantity += quantity
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &entity.CartItem{
		UserID:    userID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, fmt.Errorf("加入购物车失败: %w", err)
	}
	return item, nil
}

// UpdateQuantity 改数量，0 视为删除
func (s *CartService) UpdateQuantity(userID, itemID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("数量不能为负: %w", ErrValidation)
	}
	if quantity == 0 {
		return s.Remove(userID, itemID)
	}

	item, err := s.cartRepo.GetByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrPermissionDenied
	}
	item.Quantity = quantity
	return s.cartRepo.Update(item)
}

// Remove 删除一行，只能删自己的
func (s *CartService) Remove(userID, itemID string) error {
	affected, err := s.cartRepo.Remove(userID, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) Clear(userID string) error {
	return s.cartRepo.ClearByUser(userID)
}
