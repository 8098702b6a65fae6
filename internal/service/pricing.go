package service

import (
	"math"
	"strings"

	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
)

// PricingEngine 成本核算引擎。全部方法都是纯计算，
// 常量（密度系数/税率/运费/加工费表/毛利率）来自配置。
type PricingEngine struct {
	cfg config.PricingConfig
}

func NewPricingEngine(cfg config.PricingConfig) *PricingEngine {
	return &PricingEngine{cfg: cfg}
}

// CostInputs 核算的基础输入
type CostInputs struct {
	Material              string
	CoreStructure         entity.CoreStructure
	TotalWeight           float64
	Length                float64
	NonConductorUnitPrice float64
	LaborCost             float64
}

// CostDerivation 六个派生字段，必须整体写入，禁止只更新其中一部分
type CostDerivation struct {
	ConductorWeight    float64
	ConductorAmount    float64
	NonConductorWeight float64
	NonConductorAmount float64
	TotalCost          float64
	ReferencePrice     float64
}

// CalculateConductorAndCost 核心公式。
// 单组导体重 = 丝号² × 根数 × 芯数 × 密度系数 × 长度 / 100，
// 非导体重 = max(0, 总重 − 导体重)，
// 参考价 = 总成本 × 毛利率。
func (e *PricingEngine) CalculateConductorAndCost(in CostInputs, conductorUnitPrice float64) CostDerivation {
	coeff := e.cfg.CopperDensityCoeff
	if in.Material == entity.MaterialAluminum {
		coeff = e.cfg.AluminumDensityCoeff
	}

	var conductorWeight float64
	for _, g := range in.CoreStructure {
		conductorWeight += g.Gauge * g.Gauge * float64(g.Strands) * float64(g.Cores) * coeff * in.Length / 100.0
	}
	conductorWeight = Round4(conductorWeight)

	conductorAmount := Round2(conductorWeight * conductorUnitPrice)

	nonConductorWeight := Round4(in.TotalWeight - conductorWeight)
	if nonConductorWeight < 0 {
		nonConductorWeight = 0
	}
	nonConductorAmount := Round2(nonConductorWeight * in.NonConductorUnitPrice)

	totalCost := Round2(conductorAmount + nonConductorAmount + in.LaborCost)

	return CostDerivation{
		ConductorWeight:    conductorWeight,
		ConductorAmount:    conductorAmount,
		NonConductorWeight: nonConductorWeight,
		NonConductorAmount: nonConductorAmount,
		TotalCost:          totalCost,
		ReferencePrice:     Round2(totalCost * e.cfg.Margin),
	}
}

// DeriveConductorUnitPrice 由人民币含税铜价推算导体单价($/kg)。
// 公式: (市场价 × 税率系数 + 运费 + 分类加工费) / 汇率 / 1000。
// 分类加工费按配置顺序做大小写不敏感的包含匹配，先命中先生效。
func (e *PricingEngine) DeriveConductorUnitPrice(cnyMarketPrice, exchangeRate float64, category string) float64 {
	baseCny := cnyMarketPrice*e.cfg.TaxFactor + e.cfg.FreightSurcharge

	var surcharge float64
	upper := strings.ToUpper(category)
	for _, cs := range e.cfg.CategorySurcharges {
		if strings.Contains(upper, strings.ToUpper(cs.Keyword)) {
			surcharge = cs.Surcharge
			break
		}
	}

	return (baseCny + surcharge) / exchangeRate / 1000.0
}

// VariantAutoPrice 按铜价自动调价的变体售价:
// 铜单价(元/kg) × 导体重 + 加工费
func (e *PricingEngine) VariantAutoPrice(copperPricePerKg, conductorWeight, processCost float64) float64 {
	return Round2(copperPricePerKg*conductorWeight + processCost)
}

// Round2 金额统一保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 重量/单价保留四位小数
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
