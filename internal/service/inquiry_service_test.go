package service

import (
	"errors"
	"testing"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/testutil"
	"gorm.io/gorm"
)

func newInquiryService(t *testing.T, db *gorm.DB) *InquiryService {
	t.Helper()
	return NewInquiryService(
		repository.NewInquiryRepository(db),
		repository.NewCartRepository(db),
		db,
	)
}

func TestInquiryFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInquiryService(t, db)

	user := testutil.SeedUser(t, db, "buyer@test.com", entity.RoleUser, 0)
	product := testutil.SeedProduct(t, db, "特种电缆", "3x10", "黑", 0, 0)
	variant := product.Variants[0]
	testutil.SeedCartItem(t, db, user.ID, variant.ID, 500)

	inq, err := svc.CreateFromCart(user.ID, "工程批量询价")
	if err != nil {
		t.Fatalf("CreateFromCart error: %v", err)
	}
	if inq.Status != entity.InquiryStatusPending {
		t.Errorf("Status = %s, want PENDING", inq.Status)
	}
	if len(inq.Items) != 1 || inq.Items[0].Quantity != 500 {
		t.Fatalf("items = %+v", inq.Items)
	}

	// 发起询价后购物车应清空
	var count int64
	db.Model(&entity.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("cart items remaining = %d, want 0", count)
	}

	// 库存不受询价影响
	var v entity.ProductVariant
	db.First(&v, "id = ?", variant.ID)
	if v.Stock != 0 {
		t.Errorf("stock = %d, want 0 (inquiry never touches stock)", v.Stock)
	}

	// 管理员报价
	quoted, err := svc.Quote(inq.ID, "量大从优", []QuoteLine{
		{ItemID: inq.Items[0].ID, UnitPrice: 7.85},
	})
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if quoted.Status != entity.InquiryStatusQuoted {
		t.Errorf("Status = %s, want QUOTED", quoted.Status)
	}
	if quoted.QuotedTotalPrice == nil || *quoted.QuotedTotalPrice != 3925.0 {
		t.Errorf("QuotedTotalPrice = %v, want 3925", quoted.QuotedTotalPrice)
	}

	// 再次报价覆盖
	requoted, err := svc.Quote(inq.ID, "最终价", []QuoteLine{
		{ItemID: inq.Items[0].ID, UnitPrice: 7.5},
	})
	if err != nil {
		t.Fatalf("requote error: %v", err)
	}
	if *requoted.QuotedTotalPrice != 3750.0 {
		t.Errorf("QuotedTotalPrice = %v, want 3750", *requoted.QuotedTotalPrice)
	}

	// 用户接受
	accepted, err := svc.Respond(inq.ID, user.ID, true)
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if accepted.Status != entity.InquiryStatusAccepted {
		t.Errorf("Status = %s, want ACCEPTED", accepted.Status)
	}

	// 终态不可再报价也不可关闭
	if _, err := svc.Quote(inq.ID, "", []QuoteLine{{ItemID: inq.Items[0].ID, UnitPrice: 7}}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("quote terminal err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Close(inq.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("close terminal err = %v, want ErrInvalidTransition", err)
	}
}

func TestInquiryQuote_MissingLine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInquiryService(t, db)

	user := testutil.SeedUser(t, db, "buyer@test.com", entity.RoleUser, 0)
	p1 := testutil.SeedProduct(t, db, "电缆A", "3x4", "黑", 0, 0)
	p2 := testutil.SeedProduct(t, db, "电缆B", "3x6", "黑", 0, 0)
	testutil.SeedCartItem(t, db, user.ID, p1.Variants[0].ID, 10)
	testutil.SeedCartItem(t, db, user.ID, p2.Variants[0].ID, 20)

	inq, err := svc.CreateFromCart(user.ID, "")
	if err != nil {
		t.Fatalf("CreateFromCart error: %v", err)
	}

	// 只报一行，另一行从未报过价，应拒绝
	_, err = svc.Quote(inq.ID, "", []QuoteLine{{ItemID: inq.Items[0].ID, UnitPrice: 8}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestInquiryRespond_OnlyOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInquiryService(t, db)

	user := testutil.SeedUser(t, db, "buyer@test.com", entity.RoleUser, 0)
	other := testutil.SeedUser(t, db, "other@test.com", entity.RoleUser, 0)
	product := testutil.SeedProduct(t, db, "电缆", "3x4", "黑", 0, 0)
	testutil.SeedCartItem(t, db, user.ID, product.Variants[0].ID, 10)

	inq, _ := svc.CreateFromCart(user.ID, "")
	if _, err := svc.Quote(inq.ID, "", []QuoteLine{{ItemID: inq.Items[0].ID, UnitPrice: 9}}); err != nil {
		t.Fatalf("Quote error: %v", err)
	}

	if _, err := svc.Respond(inq.ID, other.ID, true); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}

	// 未报价状态不可响应
	rejected, err := svc.Respond(inq.ID, user.ID, false)
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if rejected.Status != entity.InquiryStatusRejected {
		t.Errorf("Status = %s, want REJECTED", rejected.Status)
	}
	if _, err := svc.Respond(inq.ID, user.ID, true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("respond twice err = %v, want ErrInvalidTransition", err)
	}
}
