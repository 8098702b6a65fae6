package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"gorm.io/gorm"
)

// InquiryService 询价流程：用户发起 → 管理员报价 → 用户接受/拒绝。
// 全程不碰库存。
type InquiryService struct {
	inquiryRepo *repository.InquiryRepository
	cartRepo    *repository.CartRepository
	db          *gorm.DB
}

func NewInquiryService(inquiryRepo *repository.InquiryRepository, cartRepo *repository.CartRepository, db *gorm.DB) *InquiryService {
	return &InquiryService{inquiryRepo: inquiryRepo, cartRepo: cartRepo, db: db}
}

// CreateFromCart 用当前购物车内容发起询价并清空购物车
func (s *InquiryService) CreateFromCart(userID, remark string) (*entity.Inquiry, error) {
	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("读取购物车失败: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	inquiryID := uuid.New().String()
	items := make([]entity.InquiryItem, 0, len(cartItems))
	for _, ci := range cartItems {
		if ci.Variant == nil || ci.Variant.Product == nil {
			continue
		}
		variantID := ci.VariantID
		items = append(items, entity.InquiryItem{
			InquiryID:    inquiryID,
			VariantID:    &variantID,
			ProductName:  ci.Variant.Product.Name,
			ProductSpec:  ci.Variant.Spec,
			ProductColor: ci.Variant.Color,
			Quantity:     ci.Quantity,
		})
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	inquiry := &entity.Inquiry{
		ID:         inquiryID,
		UserID:     userID,
		Status:     entity.InquiryStatusPending,
		UserRemark: remark,
		Items:      items,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inquiry).Error; err != nil {
			return fmt.Errorf("创建询价单失败: %w", err)
		}
		return tx.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.inquiryRepo.GetByID(inquiryID)
}

func (s *InquiryService) Get(id, requesterID, requesterRole string) (*entity.Inquiry, error) {
	inq, err := s.inquiryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if requesterRole != entity.RoleAdmin && inq.UserID != requesterID {
		return nil, ErrPermissionDenied
	}
	return inq, nil
}

func (s *InquiryService) List(requesterID, requesterRole string, params repository.InquiryListParams) ([]entity.Inquiry, int64, error) {
	if requesterRole != entity.RoleAdmin {
		params.UserID = requesterID
	}
	return s.inquiryRepo.List(params)
}

// QuoteLine 报价明细：对某一行给出单价
type QuoteLine struct {
	ItemID    string  `json:"item_id" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// Quote 管理员报价。PENDING 和 QUOTED 都可报，重复报价直接覆盖。
// 总价 = round(Σ 单价 × 数量, 2)。
func (s *InquiryService) Quote(inquiryID, reply string, lines []QuoteLine) (*entity.Inquiry, error) {
	priceByItem := make(map[string]float64, len(lines))
	for _, l := range lines {
		if l.UnitPrice < 0 {
			return nil, fmt.Errorf("报价不能为负: %w", ErrValidation)
		}
		priceByItem[l.ItemID] = l.UnitPrice
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inq entity.Inquiry
		if err := tx.Preload("Items").Where("id = ?", inquiryID).First(&inq).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inq.Status != entity.InquiryStatusPending && inq.Status != entity.InquiryStatusQuoted {
			return ErrInvalidTransition
		}

		var total float64
		for i := range inq.Items {
			item := &inq.Items[i]
			price, ok := priceByItem[item.ID]
			if !ok {
				if item.QuotedUnitPrice == nil {
					return fmt.Errorf("明细 %s 未报价: %w", item.ID, ErrValidation)
				}
				price = *item.QuotedUnitPrice
			}
			p := Round2(price)
			item.QuotedUnitPrice = &p
			if err := tx.Save(item).Error; err != nil {
				return err
			}
			total += p * float64(item.Quantity)
		}

		quoted := Round2(total)
		return tx.Model(&entity.Inquiry{}).Where("id = ?", inquiryID).Updates(map[string]interface{}{
			"status":             entity.InquiryStatusQuoted,
			"admin_reply":        reply,
			"quoted_total_price": quoted,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.inquiryRepo.GetByID(inquiryID)
}

// Respond 用户接受或拒绝报价，只能操作自己的 QUOTED 单
func (s *InquiryService) Respond(inquiryID, userID string, accept bool) (*entity.Inquiry, error) {
	inq, err := s.inquiryRepo.GetByID(inquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inq.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if inq.Status != entity.InquiryStatusQuoted {
		return nil, ErrInvalidTransition
	}

	if accept {
		inq.Status = entity.InquiryStatusAccepted
	} else {
		inq.Status = entity.InquiryStatusRejected
	}
	if err := s.inquiryRepo.Update(inq); err != nil {
		return nil, err
	}
	return inq, nil
}

// Close 管理员关闭询价单，终态单不能再关
func (s *InquiryService) Close(inquiryID string) (*entity.Inquiry, error) {
	inq, err := s.inquiryRepo.GetByID(inquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	switch inq.Status {
	case entity.InquiryStatusAccepted, entity.InquiryStatusRejected, entity.InquiryStatusClosed:
		return nil, ErrInvalidTransition
	}
	inq.Status = entity.InquiryStatusClosed
	if err := s.inquiryRepo.Update(inq); err != nil {
		return nil, err
	}
	return inq, nil
}
