package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCostService(t *testing.T, db *gorm.DB) *CostService {
	t.Helper()
	market := NewMarketService(
		repository.NewMarketRepository(db),
		nil,
		config.MarketConfig{FetchInterval: time.Hour, FetchTimeout: time.Second},
		zap.NewNop(),
	)
	return NewCostService(
		repository.NewCostRepository(db),
		repository.NewCatalogRepository(db),
		market,
		NewPricingEngine(testPricingConfig()),
		db,
		zap.NewNop(),
	)
}

func seedReading(t *testing.T, db *gorm.DB, cny, rate float64) {
	t.Helper()
	reading := &entity.MarketPriceReading{
		CnyPrice:     cny,
		UsdPrice:     Round2(cny / rate),
		ExchangeRate: rate,
		CapturedAt:   time.Now(),
	}
	if err := db.Create(reading).Error; err != nil {
		t.Fatalf("Failed to seed market reading: %v", err)
	}
}

func TestCostCreate_DerivesAllFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)

	record, err := svc.Create(CostInput{
		SpecName: "RVV 3x1.5",
		Category: "RVV",
		Material: entity.MaterialCopper,
		CoreStructure: entity.CoreStructure{
			{Cores: 3, Strands: 7, Gauge: 1.35},
		},
		TotalWeight:           35,
		Length:                100,
		ConductorUnitPrice:    68,
		NonConductorUnitPrice: 12,
		LaborCost:             300,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if record.ConductorWeight == 0 || record.TotalCost == 0 || record.ReferencePrice == 0 {
		t.Errorf("derived fields not populated: %+v", record)
	}
	if record.ReferencePrice != Round2(record.TotalCost*1.15) {
		t.Errorf("ReferencePrice = %v, want TotalCost×1.15", record.ReferencePrice)
	}
}

func TestCostCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)

	cases := []CostInput{
		{SpecName: "", Material: "Cu", Length: 100},
		{SpecName: "x", Material: "Fe", Length: 100},
		{SpecName: "x", Material: "Cu", Length: 0},
		{SpecName: "x", Material: "Cu", Length: 100, LaborCost: -1},
		{SpecName: "x", Material: "Cu", Length: 100,
			CoreStructure: entity.CoreStructure{{Cores: 0, Strands: 7, Gauge: 1}}},
	}
	for i, in := range cases {
		if _, err := svc.Create(in); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
}

func TestCostUpdate_Recomputes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)

	record, err := svc.Create(CostInput{
		SpecName:           "BV 2.5",
		Category:           "BV",
		Material:           entity.MaterialCopper,
		CoreStructure:      entity.CoreStructure{{Cores: 1, Strands: 1, Gauge: 1.78}},
		TotalWeight:        3,
		Length:             100,
		ConductorUnitPrice: 60,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	oldAmount := record.ConductorAmount

	updated, err := svc.Update(record.ID, CostInput{
		SpecName:           "BV 2.5",
		Category:           "BV",
		Material:           entity.MaterialCopper,
		CoreStructure:      entity.CoreStructure{{Cores: 1, Strands: 1, Gauge: 1.78}},
		TotalWeight:        3,
		Length:             100,
		ConductorUnitPrice: 80,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ConductorAmount <= oldAmount {
		t.Errorf("ConductorAmount = %v, want > %v after price raise", updated.ConductorAmount, oldAmount)
	}
}

func TestSyncWithMarket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)
	seedReading(t, db, 73000, 7.3)

	copperIn := CostInput{
		SpecName:           "RVV 3x1.5",
		Category:           "RVV",
		Material:           entity.MaterialCopper,
		CoreStructure:      entity.CoreStructure{{Cores: 3, Strands: 7, Gauge: 1.35}},
		TotalWeight:        35,
		Length:             100,
		ConductorUnitPrice: 1,
	}
	aluminumIn := CostInput{
		SpecName:           "铝芯 3x10",
		Category:           "YJLV",
		Material:           entity.MaterialAluminum,
		CoreStructure:      entity.CoreStructure{{Cores: 3, Strands: 7, Gauge: 2}},
		TotalWeight:        20,
		Length:             100,
		ConductorUnitPrice: 25,
	}
	copper, err := svc.Create(copperIn)
	if err != nil {
		t.Fatalf("Create copper error: %v", err)
	}
	aluminum, err := svc.Create(aluminumIn)
	if err != nil {
		t.Fatalf("Create aluminum error: %v", err)
	}

	updated, err := svc.SyncWithMarket(context.Background())
	if err != nil {
		t.Fatalf("SyncWithMarket error: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2 (all records resynced)", updated)
	}

	after, _ := svc.Get(copper.ID)
	engine := NewPricingEngine(testPricingConfig())
	wantPrice := engine.DeriveConductorUnitPrice(73000, 7.3, "RVV")
	// 列类型 decimal(12,4)，落库时被截断到四位
	if math.Abs(after.ConductorUnitPrice-wantPrice) > 0.001 {
		t.Errorf("ConductorUnitPrice = %v, want ≈%v", after.ConductorUnitPrice, wantPrice)
	}

	// 铝质记录同样参与同步，材质只体现在重算的密度系数里
	alAfter, _ := svc.Get(aluminum.ID)
	wantAlPrice := engine.DeriveConductorUnitPrice(73000, 7.3, "YJLV")
	if math.Abs(alAfter.ConductorUnitPrice-wantAlPrice) > 0.001 {
		t.Errorf("aluminum ConductorUnitPrice = %v, want ≈%v", alAfter.ConductorUnitPrice, wantAlPrice)
	}
	alDeriv := engine.CalculateConductorAndCost(CostInputs{
		Material:              entity.MaterialAluminum,
		CoreStructure:         aluminumIn.CoreStructure,
		TotalWeight:           aluminumIn.TotalWeight,
		Length:                aluminumIn.Length,
		NonConductorUnitPrice: aluminumIn.NonConductorUnitPrice,
		LaborCost:             aluminumIn.LaborCost,
	}, wantAlPrice)
	if math.Abs(alAfter.ConductorAmount-alDeriv.ConductorAmount) > 0.001 {
		t.Errorf("aluminum ConductorAmount = %v, want ≈%v (铝系数)", alAfter.ConductorAmount, alDeriv.ConductorAmount)
	}
}

func TestSyncWithMarket_NoReading(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)

	if _, err := svc.SyncWithMarket(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSyncVariantPrices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCostService(t, db)
	seedReading(t, db, 73000, 7.3)

	// 参与调价的变体
	auto := testutil.SeedProduct(t, db, "BVR 2.5", "2.5平方", "红", 100, 10)
	db.Model(&entity.ProductVariant{}).Where("id = ?", auto.Variants[0].ID).
		Updates(map[string]interface{}{"conductor_weight": 2.24, "process_cost": 45.0})

	// 手动定价变体（导体重为 0）不受影响
	manual := testutil.SeedProduct(t, db, "手动定价", "3x1.0", "白", 88, 10)

	updated, err := svc.SyncVariantPrices(context.Background())
	if err != nil {
		t.Fatalf("SyncVariantPrices error: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	// 行情吨价直接折千克：73000/1000 × 2.24 + 45
	engine := NewPricingEngine(testPricingConfig())
	want := engine.VariantAutoPrice(73, 2.24, 45)
	if want != 208.52 {
		t.Fatalf("VariantAutoPrice = %v, want 208.52", want)
	}

	var v entity.ProductVariant
	db.First(&v, "id = ?", auto.Variants[0].ID)
	if !almostEqual(v.Price, want) {
		t.Errorf("price = %v, want %v", v.Price, want)
	}

	var m entity.ProductVariant
	db.First(&m, "id = ?", manual.Variants[0].ID)
	if m.Price != 88 {
		t.Errorf("manual price = %v, want 88 (untouched)", m.Price)
	}

	// 再跑一次没有可调项
	again, err := svc.SyncVariantPrices(context.Background())
	if err != nil {
		t.Fatalf("second sync error: %v", err)
	}
	if again != 0 {
		t.Errorf("second sync updated = %d, want 0", again)
	}
}

func TestPromoteFromCost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	costSvc := newCostService(t, db)
	catalogSvc := NewCatalogService(
		repository.NewCatalogRepository(db),
		repository.NewCostRepository(db),
		nil,
	)

	record, err := costSvc.Create(CostInput{
		SpecName:              "RVV 3x1.5",
		Category:              "RVV",
		Material:              entity.MaterialCopper,
		CoreStructure:         entity.CoreStructure{{Cores: 3, Strands: 7, Gauge: 1.35}},
		TotalWeight:           35,
		Length:                100,
		ConductorUnitPrice:    68,
		NonConductorUnitPrice: 12,
		LaborCost:             300,
	})
	if err != nil {
		t.Fatalf("Create cost error: %v", err)
	}

	product, err := catalogSvc.PromoteFromCost(record.ID, 3200, 50, nil)
	if err != nil {
		t.Fatalf("PromoteFromCost error: %v", err)
	}
	if product.Name != "RVV 3x1.5" {
		t.Errorf("Name = %s, want RVV 3x1.5", product.Name)
	}
	if product.CostID == nil || *product.CostID != record.ID {
		t.Error("CostID not linked")
	}
	if len(product.Variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(product.Variants))
	}
	v := product.Variants[0]
	if v.Color != "默认" || v.Price != 3200 || v.Stock != 50 {
		t.Errorf("variant = %+v", v)
	}
	if !almostEqual(v.ProcessCost, Round2(record.LaborCost+record.NonConductorAmount)) {
		t.Errorf("ProcessCost = %v, want labor+non-conductor", v.ProcessCost)
	}
	if !almostEqual(v.ConductorWeight, record.ConductorWeight) {
		t.Errorf("ConductorWeight = %v, want %v", v.ConductorWeight, record.ConductorWeight)
	}
}
