package service

import (
	"math"
	"testing"

	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
)

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		CopperDensityCoeff:   0.7,
		AluminumDensityCoeff: 0.214,
		TaxFactor:            0.935,
		FreightSurcharge:     1500,
		Margin:               1.15,
		CategorySurcharges:   config.DefaultCategorySurcharges(),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateConductorAndCost_Copper(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())

	// RVV 3×7×1.35 + 1×7×1.04，百米总重 42kg
	in := CostInputs{
		Material: entity.MaterialCopper,
		CoreStructure: entity.CoreStructure{
			{Cores: 3, Strands: 7, Gauge: 1.35},
			{Cores: 1, Strands: 7, Gauge: 1.04},
		},
		TotalWeight:           42,
		Length:                100,
		NonConductorUnitPrice: 12,
		LaborCost:             300,
	}

	d := engine.CalculateConductorAndCost(in, 68)

	// 3×7×1.35²×0.7 + 1×7×1.04²×0.7 = 26.79075 + 5.29984 = 32.09059 → 32.0906
	if !almostEqual(d.ConductorWeight, 32.0906) {
		t.Errorf("ConductorWeight = %v, want 32.0906", d.ConductorWeight)
	}
	if !almostEqual(d.ConductorAmount, 2182.16) {
		t.Errorf("ConductorAmount = %v, want 2182.16", d.ConductorAmount)
	}
	if !almostEqual(d.NonConductorWeight, 9.9094) {
		t.Errorf("NonConductorWeight = %v, want 9.9094", d.NonConductorWeight)
	}
	if !almostEqual(d.NonConductorAmount, 118.91) {
		t.Errorf("NonConductorAmount = %v, want 118.91", d.NonConductorAmount)
	}
	if !almostEqual(d.TotalCost, 2601.07) {
		t.Errorf("TotalCost = %v, want 2601.07", d.TotalCost)
	}
	if !almostEqual(d.ReferencePrice, 2991.23) {
		t.Errorf("ReferencePrice = %v, want 2991.23", d.ReferencePrice)
	}
}

func TestCalculateConductorAndCost_AluminumCoeff(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())

	in := CostInputs{
		Material:      entity.MaterialAluminum,
		CoreStructure: entity.CoreStructure{{Cores: 1, Strands: 1, Gauge: 2}},
		TotalWeight:   10,
		Length:        100,
	}

	d := engine.CalculateConductorAndCost(in, 20)

	// 2² × 1 × 1 × 0.214 × 100 / 100 = 0.856
	if !almostEqual(d.ConductorWeight, 0.856) {
		t.Errorf("ConductorWeight = %v, want 0.856", d.ConductorWeight)
	}
}

func TestCalculateConductorAndCost_NonConductorClamp(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())

	// 总重小于导体重时非导体重钳为 0，不出现负数
	in := CostInputs{
		Material:              entity.MaterialCopper,
		CoreStructure:         entity.CoreStructure{{Cores: 4, Strands: 19, Gauge: 2.5}},
		TotalWeight:           1,
		Length:                100,
		NonConductorUnitPrice: 15,
	}

	d := engine.CalculateConductorAndCost(in, 60)
	if d.NonConductorWeight != 0 {
		t.Errorf("NonConductorWeight = %v, want 0", d.NonConductorWeight)
	}
	if d.NonConductorAmount != 0 {
		t.Errorf("NonConductorAmount = %v, want 0", d.NonConductorAmount)
	}
}

func TestCalculateConductorAndCost_Deterministic(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())
	in := CostInputs{
		Material:              entity.MaterialCopper,
		CoreStructure:         entity.CoreStructure{{Cores: 3, Strands: 7, Gauge: 1.78}},
		TotalWeight:           55.5,
		Length:                100,
		NonConductorUnitPrice: 11.5,
		LaborCost:             280,
	}

	first := engine.CalculateConductorAndCost(in, 72.3)
	for i := 0; i < 10; i++ {
		if got := engine.CalculateConductorAndCost(in, 72.3); got != first {
			t.Fatalf("iteration %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestDeriveConductorUnitPrice_SurchargeOrder(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())

	const cny = 73000.0
	const rate = 7.3

	base := cny*0.935 + 1500

	cases := []struct {
		category  string
		surcharge float64
	}{
		{"BVR", 1000},
		{"bvr-软线", 1000}, // 大小写不敏感，BVR 优先于 BV
		{"RVV", 700},
		{"BV", 200},
		{"YJV", 0},
		{"", 0},
	}
	for _, tc := range cases {
		want := (base + tc.surcharge) / rate / 1000
		got := engine.DeriveConductorUnitPrice(cny, rate, tc.category)
		if !almostEqual(got, want) {
			t.Errorf("category %q: got %v, want %v", tc.category, got, want)
		}
	}
}

func TestVariantAutoPrice(t *testing.T) {
	engine := NewPricingEngine(testPricingConfig())

	got := engine.VariantAutoPrice(9.35, 32.0776, 45)
	want := Round2(9.35*32.0776 + 45)
	if !almostEqual(got, want) {
		t.Errorf("VariantAutoPrice = %v, want %v", got, want)
	}
}

func TestRoundHelpers(t *testing.T) {
	if got := Round2(2.345); !almostEqual(got, 2.35) {
		t.Errorf("Round2(2.345) = %v, want 2.35", got)
	}
	if got := Round4(0.00005); !almostEqual(got, 0.0001) {
		t.Errorf("Round4(0.00005) = %v, want 0.0001", got)
	}
}
