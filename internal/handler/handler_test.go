package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/middleware"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
	"github.com/rein-lin153/CableWeb/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupEnv 组装一套完整的测试路由：真实数据库，无 Redis/MinIO
func setupEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            testutil.JWTSecret,
			AccessTokenExpire: time.Hour,
		},
		Market: config.MarketConfig{
			FetchInterval: time.Hour,
			FetchTimeout:  time.Second,
		},
		Pricing: config.PricingConfig{
			CopperDensityCoeff:   0.7,
			AluminumDensityCoeff: 0.214,
			TaxFactor:            0.935,
			FreightSurcharge:     1500,
			Margin:               1.15,
			CategorySurcharges:   config.DefaultCategorySurcharges(),
		},
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, nil, nil, cfg, zap.NewNop())
	handlers := NewHandlers(services, zap.NewNop())

	r := testutil.SetupRouter()
	api := r.Group("/api")
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)
	api.GET("/products", handlers.Catalog.ListProducts)
	api.GET("/products/:id", handlers.Catalog.GetProduct)

	auth := testutil.AuthGroup(r, "/api")
	auth.GET("/auth/me", handlers.Auth.Me)
	auth.GET("/cart", handlers.Cart.List)
	auth.POST("/cart/items", handlers.Cart.Add)
	auth.DELETE("/cart/items/:id", handlers.Cart.Remove)
	auth.POST("/orders", handlers.Order.Create)
	auth.GET("/orders", handlers.Order.List)
	auth.GET("/orders/:id", handlers.Order.Get)
	auth.POST("/inquiries", handlers.Inquiry.Create)

	admin := r.Group("/api/admin",
		middleware.JWTAuth(testutil.JWTSecret, nil), middleware.RequireAdmin())
	admin.POST("/orders/:id/confirm", handlers.Order.Confirm)
	admin.POST("/orders/:id/cancel", handlers.Order.Cancel)
	admin.POST("/costs", handlers.Cost.Create)
	admin.GET("/costs", handlers.Cost.List)

	return db, r
}

func TestRegisterAndLogin(t *testing.T) {
	_, r := setupEnv(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    "new@test.com",
		"password": "secret123",
		"username": "新用户",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	// 重复注册报冲突
	w = testutil.DoRequest(r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    "new@test.com",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "new@test.com",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}

	// 错误密码
	w = testutil.DoRequest(r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "new@test.com",
		"password": "wrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}

	// 用签发的 token 访问 me
	w = testutil.DoRequest(r, http.MethodGet, "/api/auth/me", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCartAndOrderFlow(t *testing.T) {
	db, r := setupEnv(t)

	buyer := testutil.SeedUser(t, db, "buyer@test.com", entity.RoleUser, 0)
	admin := testutil.SeedUser(t, db, "admin@test.com", entity.RoleAdmin, 0)
	product := testutil.SeedProduct(t, db, "BVR电线", "2.5平方", "红", 128.5, 50)

	buyerToken := testutil.GenerateTestToken(buyer.ID, buyer.Email, buyer.Role)
	adminToken := testutil.GenerateTestToken(admin.ID, admin.Email, admin.Role)

	// 未认证访问购物车被拒
	w := testutil.DoRequest(r, http.MethodGet, "/api/cart", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated cart status = %d, want 401", w.Code)
	}

	// 加购两次同一变体，数量合并
	addBody := map[string]interface{}{"variant_id": product.Variants[0].ID, "quantity": 2}
	w = testutil.DoRequest(r, http.MethodPost, "/api/cart/items", addBody, buyerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("add cart status = %d, body = %s", w.Code, w.Body.String())
	}
	testutil.DoRequest(r, http.MethodPost, "/api/cart/items", addBody, buyerToken)

	w = testutil.DoRequest(r, http.MethodGet, "/api/cart", nil, buyerToken)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("cart lines = %d, want 1 (merged)", len(items))
	}
	if qty := items[0].(map[string]interface{})["quantity"].(float64); qty != 4 {
		t.Errorf("quantity = %v, want 4", qty)
	}

	// 下单
	w = testutil.DoRequest(r, http.MethodPost, "/api/orders", nil, buyerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	order := resp["data"].(map[string]interface{})
	orderID := order["id"].(string)

	// 普通用户不能走管理员确认接口
	w = testutil.DoRequest(r, http.MethodPost, "/api/admin/orders/"+orderID+"/confirm", nil, buyerToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("buyer confirm status = %d, want 403", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/admin/orders/"+orderID+"/confirm", nil, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("admin confirm status = %d, body = %s", w.Code, w.Body.String())
	}

	var v entity.ProductVariant
	db.First(&v, "id = ?", product.Variants[0].ID)
	if v.Stock != 46 {
		t.Errorf("stock = %d, want 46", v.Stock)
	}

	// 其他买家看不到这单
	other := testutil.SeedUser(t, db, "other@test.com", entity.RoleUser, 0)
	otherToken := testutil.GenerateTestToken(other.ID, other.Email, other.Role)
	w = testutil.DoRequest(r, http.MethodGet, "/api/orders/"+orderID, nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger get order status = %d, want 403", w.Code)
	}

	// 库存不足时确认整单失败并返回 409
	testutil.SeedCartItem(t, db, buyer.ID, product.Variants[0].ID, 100)
	w = testutil.DoRequest(r, http.MethodPost, "/api/orders", nil, buyerToken)
	resp = testutil.ParseResponse(w)
	bigOrderID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(r, http.MethodPost, "/api/admin/orders/"+bigOrderID+"/confirm", nil, adminToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("oversold confirm status = %d, want 409, body = %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["kind"] != "INSUFFICIENT_STOCK" {
		t.Errorf("kind = %v, want INSUFFICIENT_STOCK", resp["kind"])
	}
}

func TestCostEndpoints(t *testing.T) {
	db, r := setupEnv(t)

	admin := testutil.SeedUser(t, db, "admin@test.com", entity.RoleAdmin, 0)
	adminToken := testutil.GenerateTestToken(admin.ID, admin.Email, admin.Role)

	body := map[string]interface{}{
		"spec_name": "RVV 3x1.5",
		"category":  "RVV",
		"material":  "Cu",
		"core_structure": []map[string]interface{}{
			{"cores": 3, "strands": 7, "gauge": 1.35},
		},
		"total_weight":             35,
		"length":                   100,
		"conductor_unit_price":     68,
		"non_conductor_unit_price": 12,
		"labor_cost":               300,
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/admin/costs", body, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create cost status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	record := resp["data"].(map[string]interface{})
	if record["conductor_weight"].(float64) <= 0 {
		t.Error("conductor_weight not derived")
	}
	if record["reference_price"].(float64) <= record["total_cost"].(float64) {
		t.Error("reference_price should exceed total_cost")
	}

	// 非法材质
	bad := map[string]interface{}{"spec_name": "x", "material": "Fe", "length": 100}
	w = testutil.DoRequest(r, http.MethodPost, "/api/admin/costs", bad, adminToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad material status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/admin/costs?category=RVV", nil, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("list costs status = %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", data["total"])
	}
}
