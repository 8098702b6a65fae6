package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService 订单生命周期服务。所有涉及库存/明细/总价的写操作
// 都在单个数据库事务内完成。
type OrderService struct {
	orderRepo *repository.OrderRepository
	cartRepo  *repository.CartRepository
	userRepo  *repository.UserRepository
	media     *MediaStore
	db        *gorm.DB
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	userRepo *repository.UserRepository,
	media *MediaStore,
	db *gorm.DB,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		media:     media,
		db:        db,
	}
}

// CreateFromCart 从购物车生成订单：快照明细、计算折后总价、清空购物车，
// 三者同一事务
func (s *OrderService) CreateFromCart(userID string) (*entity.Order, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("用户不存在: %w", ErrNotFound)
	}

	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("读取购物车失败: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := uuid.New().String()
	var originalTotal float64
	items := make([]entity.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		variant := ci.Variant
		if variant == nil || variant.Product == nil {
			continue
		}
		subtotal := Round2(variant.Price * float64(ci.Quantity))
		originalTotal += subtotal

		variantID := variant.ID
		productID := variant.ProductID
		items = append(items, entity.OrderItem{
			ID:           uuid.New().String(),
			OrderID:      orderID,
			ProductID:    &productID,
			VariantID:    &variantID,
			ProductName:  variant.Product.Name,
			ProductSpec:  variant.Spec,
			ProductColor: variant.Color,
			ProductImage: variant.Product.ImageURL,
			ProductUnit:  variant.Unit,
			UnitPrice:    variant.Price,
			Quantity:     ci.Quantity,
			Subtotal:     subtotal,
		})
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	originalTotal = Round2(originalTotal)

	order := &entity.Order{
		ID:            orderID,
		UserID:        userID,
		Status:        entity.OrderStatusPending,
		OriginalTotal: originalTotal,
		FinalTotal:    Round2(originalTotal * (1 - user.DiscountRate)),
		Items:         items,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error; err != nil {
			return fmt.Errorf("清空购物车失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(orderID)
}

// GetAuthorized 获取订单详情，限管理员/买家本人/被指派司机
func (s *OrderService) GetAuthorized(orderID, requesterID, requesterRole string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isAdmin := requesterRole == entity.RoleAdmin
	isOwner := order.UserID == requesterID
	isAssignedDriver := order.DriverID != nil && *order.DriverID == requesterID
	if !isAdmin && !isOwner && !isAssignedDriver {
		return nil, ErrPermissionDenied
	}
	return order, nil
}

// List 按角色裁剪可见范围：管理员看全部，司机看被指派的，买家看自己的
func (s *OrderService) List(requesterID, requesterRole string, params repository.OrderListParams) ([]entity.Order, int64, error) {
	switch requesterRole {
	case entity.RoleAdmin:
	case entity.RoleDriver:
		params.DriverID = requesterID
	default:
		params.UserID = requesterID
	}
	return s.orderRepo.List(params)
}

// ConfirmResult 确认结果。Skipped 记录没有匹配到变体、未做库存扣减的明细
type ConfirmResult struct {
	Order   *entity.Order `json:"order"`
	Skipped []string      `json:"skipped,omitempty"`
}

// Confirm 确认订单并扣库存。事务内先锁定并检查全部明细，
// 任何一行库存不足则整单失败、不产生部分扣减。
func (s *OrderService) Confirm(orderID string) (*ConfirmResult, error) {
	var skipped []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 锁定订单行，挡住并发确认
		var order entity.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != entity.OrderStatusPending {
			if order.Status == entity.OrderStatusConfirmed {
				return ErrConflict
			}
			return ErrInvalidTransition
		}

		var items []entity.OrderItem
		if err := tx.Where("order_id = ?", orderID).Order("created_at").Find(&items).Error; err != nil {
			return err
		}

		// 第一遍：锁定变体并检查库存，全部通过后再扣减
		type debit struct {
			variant *entity.ProductVariant
			qty     int
		}
		var debits []debit
		for i := range items {
			item := &items[i]
			variant, err := s.resolveVariant(tx, item)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					skipped = append(skipped, fmt.Sprintf("%s %s %s", item.ProductName, item.ProductSpec, item.ProductColor))
					continue
				}
				return err
			}
			if variant.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductName: item.ProductName,
					Spec:        item.ProductSpec,
					Color:       item.ProductColor,
					Need:        item.Quantity,
					Have:        variant.Stock,
				}
			}
			debits = append(debits, debit{variant: variant, qty: item.Quantity})
		}

		for _, d := range debits {
			if err := tx.Model(&entity.ProductVariant{}).Where("id = ?", d.variant.ID).
				Update("stock", gorm.Expr("stock - ?", d.qty)).Error; err != nil {
				return fmt.Errorf("扣减库存失败: %w", err)
			}
		}

		return tx.Model(&entity.Order{}).Where("id = ?", orderID).
			Update("status", entity.OrderStatusConfirmed).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Order: order, Skipped: skipped}, nil
}

// resolveVariant 优先按快照里的 variant_id 锁定变体，
// 老数据没有 variant_id 时回退到 (product_id, spec, color) 匹配
func (s *OrderService) resolveVariant(tx *gorm.DB, item *entity.OrderItem) (*entity.ProductVariant, error) {
	if item.VariantID != nil {
		v, err := repository.LockVariantByID(tx, *item.VariantID)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 变体已被删除，尝试字符串匹配
	}
	if item.ProductID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return repository.LockVariantByMatch(tx, *item.ProductID, item.ProductSpec, item.ProductColor)
}

// Ship 发货：仅允许 CONFIRMED → DELIVERING
func (s *OrderService) Ship(orderID string) (*entity.Order, error) {
	err := s.transition(orderID, entity.OrderStatusConfirmed, entity.OrderStatusDelivering)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// Complete 完成订单，可附带签收照片。仅管理员或被指派司机可操作。
// 状态检查和落盘在同一把行锁里，避免与并发取消交错。
func (s *OrderService) Complete(ctx context.Context, orderID, requesterID, requesterRole string, photo []byte, filename string) (*entity.Order, error) {
	if len(photo) > 0 {
		if err := ValidateImage(photo); err != nil {
			return nil, err
		}
		if s.media == nil {
			return nil, fmt.Errorf("图片存储未配置")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order entity.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		isAdmin := requesterRole == entity.RoleAdmin
		isAssignedDriver := order.DriverID != nil && *order.DriverID == requesterID
		if !isAdmin && !isAssignedDriver {
			return ErrPermissionDenied
		}
		if order.Status != entity.OrderStatusDelivering {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{"status": entity.OrderStatusCompleted}
		if len(photo) > 0 {
			objectName := fmt.Sprintf("delivery/order_%s_sign_%d%s", orderID, time.Now().Unix(), extOf(filename))
			photoURL, err := s.media.Save(ctx, objectName, photo)
			if err != nil {
				return fmt.Errorf("保存签收照片失败: %w", err)
			}
			updates["delivery_photo_url"] = photoURL
		}
		return tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// Cancel 取消订单。COMPLETED/CANCELLED 不可取消；
// 已确认/配送中的订单要在同一事务里回补之前扣掉的库存。
func (s *OrderService) Cancel(orderID string) (*entity.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order entity.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status == entity.OrderStatusCompleted || order.Status == entity.OrderStatusCancelled {
			return ErrInvalidTransition
		}

		needRollback := order.Status == entity.OrderStatusConfirmed || order.Status == entity.OrderStatusDelivering
		if needRollback {
			var items []entity.OrderItem
			if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
				return err
			}
			for i := range items {
				variant, err := s.resolveVariant(tx, &items[i])
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						// 变体已不存在，无从回补
						continue
					}
					return err
				}
				if err := tx.Model(&entity.ProductVariant{}).Where("id = ?", variant.ID).
					Update("stock", gorm.Expr("stock + ?", items[i].Quantity)).Error; err != nil {
					return fmt.Errorf("回补库存失败: %w", err)
				}
			}
		}

		return tx.Model(&entity.Order{}).Where("id = ?", orderID).
			Update("status", entity.OrderStatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// AssignDriver 指派司机并直接进入配送状态。终态订单拒绝指派。
func (s *OrderService) AssignDriver(orderID, driverID string) (*entity.Order, error) {
	driver, err := s.userRepo.GetByID(driverID)
	if err != nil || driver.Role != entity.RoleDriver {
		return nil, fmt.Errorf("司机不存在或角色不符: %w", ErrValidation)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Model(&entity.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"driver_id": driverID,
		"status":    entity.OrderStatusDelivering,
	}).Error; err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// UpdateDriverLocation 司机上报位置，不改状态
func (s *OrderService) UpdateDriverLocation(orderID, driverID string, lat, lng float64) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.DriverID == nil || *order.DriverID != driverID {
		return nil, ErrPermissionDenied
	}

	if err := s.db.Model(&entity.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"driver_lat": lat,
		"driver_lng": lng,
	}).Error; err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// RepriceItem 管理员改某一行单价，行小计和订单折后总价同事务重算，
// 保证 final_total == round(Σ subtotal, 2)
func (s *OrderService) RepriceItem(orderID, itemID string, newUnitPrice float64) (*entity.Order, error) {
	if newUnitPrice < 0 {
		return nil, fmt.Errorf("单价不能为负: %w", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item entity.OrderItem
		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		item.UnitPrice = newUnitPrice
		item.Subtotal = Round2(newUnitPrice * float64(item.Quantity))
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		var items []entity.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		var total float64
		for _, it := range items {
			total += it.Subtotal
		}
		return tx.Model(&entity.Order{}).Where("id = ?", orderID).
			Update("final_total", Round2(total)).Error
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// transition 带状态前置检查的简单状态迁移
func (s *OrderService) transition(orderID, from, to string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order entity.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != from {
			return ErrInvalidTransition
		}
		return tx.Model(&entity.Order{}).Where("id = ?", orderID).Update("status", to).Error
	})
}

// ExportCSV 导出订单为 GBK 编码的 CSV（Excel 直接打开不乱码）
func (s *OrderService) ExportCSV(w io.Writer) error {
	orders, err := s.orderRepo.ListAll()
	if err != nil {
		return fmt.Errorf("读取订单失败: %w", err)
	}

	gbkWriter := transform.NewWriter(w, simplifiedchinese.GBK.NewEncoder())
	cw := csv.NewWriter(gbkWriter)
	defer cw.Flush()

	if err := cw.Write([]string{"订单号", "买家", "状态", "原价", "折后价", "司机", "下单时间"}); err != nil {
		return err
	}
	for _, o := range orders {
		buyer := ""
		if o.User != nil {
			buyer = o.User.Email
		}
		driver := ""
		if o.Driver != nil {
			driver = o.Driver.Email
		}
		row := []string{
			o.ID,
			buyer,
			o.Status,
			strconv.FormatFloat(o.OriginalTotal, 'f', 2, 64),
			strconv.FormatFloat(o.FinalTotal, 'f', 2, 64),
			driver,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func extOf(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i:]
		}
	}
	return ""
}
