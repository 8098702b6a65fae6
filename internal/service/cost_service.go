package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CostService 成本核算服务。成本记录的派生字段（导体重量、导体金额、
// 非导体重量、非导体金额、总成本、参考价）永远由基础输入整组重算，
// 不允许单独改派生字段。
type CostService struct {
	costRepo    *repository.CostRepository
	catalogRepo *repository.CatalogRepository
	market      *MarketService
	engine      *PricingEngine
	db          *gorm.DB
	logger      *zap.Logger
}

func NewCostService(
	costRepo *repository.CostRepository,
	catalogRepo *repository.CatalogRepository,
	market *MarketService,
	engine *PricingEngine,
	db *gorm.DB,
	logger *zap.Logger,
) *CostService {
	return &CostService{
		costRepo:    costRepo,
		catalogRepo: catalogRepo,
		market:      market,
		engine:      engine,
		db:          db,
		logger:      logger,
	}
}

// CostInput 创建/更新成本记录的基础输入
type CostInput struct {
	SpecName              string               `json:"spec_name" binding:"required"`
	Category              string               `json:"category"`
	Material              string               `json:"material"`
	CoreStructure         entity.CoreStructure `json:"core_structure"`
	TotalWeight           float64              `json:"total_weight"`
	Length                float64              `json:"length"`
	ConductorUnitPrice    float64              `json:"conductor_unit_price"`
	NonConductorUnitPrice float64              `json:"non_conductor_unit_price"`
	LaborCost             float64              `json:"labor_cost"`
	Remark                string               `json:"remark"`
}

func (in *CostInput) validate() error {
	if in.SpecName == "" {
		return fmt.Errorf("型号名称不能为空: %w", ErrValidation)
	}
	switch in.Material {
	case entity.MaterialCopper, entity.MaterialAluminum:
	default:
		return fmt.Errorf("材质必须是 Cu 或 Al: %w", ErrValidation)
	}
	if in.Length <= 0 {
		return fmt.Errorf("长度必须为正: %w", ErrValidation)
	}
	if in.TotalWeight < 0 || in.ConductorUnitPrice < 0 || in.NonConductorUnitPrice < 0 || in.LaborCost < 0 {
		return fmt.Errorf("重量和价格不能为负: %w", ErrValidation)
	}
	for _, g := range in.CoreStructure {
		if g.Cores <= 0 || g.Strands <= 0 || g.Gauge <= 0 {
			return fmt.Errorf("芯线结构各项必须为正: %w", ErrValidation)
		}
	}
	return nil
}

func (s *CostService) apply(record *entity.CostRecord, in CostInput) {
	record.SpecName = in.SpecName
	record.Category = in.Category
	record.Material = in.Material
	record.CoreStructure = in.CoreStructure
	record.TotalWeight = in.TotalWeight
	record.Length = in.Length
	record.ConductorUnitPrice = in.ConductorUnitPrice
	record.NonConductorUnitPrice = in.NonConductorUnitPrice
	record.LaborCost = in.LaborCost
	record.Remark = in.Remark

	d := s.engine.CalculateConductorAndCost(CostInputs{
		Material:              in.Material,
		CoreStructure:         in.CoreStructure,
		TotalWeight:           in.TotalWeight,
		Length:                in.Length,
		NonConductorUnitPrice: in.NonConductorUnitPrice,
		LaborCost:             in.LaborCost,
	}, in.ConductorUnitPrice)
	record.ConductorWeight = d.ConductorWeight
	record.ConductorAmount = d.ConductorAmount
	record.NonConductorWeight = d.NonConductorWeight
	record.NonConductorAmount = d.NonConductorAmount
	record.TotalCost = d.TotalCost
	record.ReferencePrice = d.ReferencePrice
}

// Create 新建成本记录并计算全部派生字段
func (s *CostService) Create(in CostInput) (*entity.CostRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	record := &entity.CostRecord{}
	s.apply(record, in)
	if err := s.costRepo.Create(record); err != nil {
		return nil, fmt.Errorf("创建成本记录失败: %w", err)
	}
	return record, nil
}

// Update 更新基础输入并整组重算派生字段
func (s *CostService) Update(id string, in CostInput) (*entity.CostRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	record, err := s.costRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.apply(record, in)
	if err := s.costRepo.Update(record); err != nil {
		return nil, fmt.Errorf("更新成本记录失败: %w", err)
	}
	return record, nil
}

func (s *CostService) Get(id string) (*entity.CostRecord, error) {
	record, err := s.costRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *CostService) Delete(id string) error {
	return s.costRepo.Delete(id)
}

func (s *CostService) List(params repository.CostListParams) ([]entity.CostRecord, int64, error) {
	return s.costRepo.List(params)
}

func (s *CostService) Categories() ([]string, error) {
	return s.costRepo.ListCategories()
}

// SuggestedUnitPrice 按最新行情推导某分类的导体单价（元/kg）
func (s *CostService) SuggestedUnitPrice(ctx context.Context, category string) (float64, error) {
	reading, err := s.market.Latest(ctx)
	if err != nil {
		return 0, err
	}
	return s.engine.DeriveConductorUnitPrice(reading.CnyPrice, reading.ExchangeRate, category), nil
}

// SyncWithMarket 用最新行情重算全部成本记录的导体单价和派生字段：
// 整批一个事务，返回更新条数。材质只影响重算里的密度系数，不影响是否参与同步。
func (s *CostService) SyncWithMarket(ctx context.Context) (int, error) {
	reading, err := s.market.Latest(ctx)
	if err != nil {
		return 0, err
	}

	records, err := s.costRepo.ListAll()
	if err != nil {
		return 0, err
	}

	updated := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			record := &records[i]
			newUnitPrice := s.engine.DeriveConductorUnitPrice(reading.CnyPrice, reading.ExchangeRate, record.Category)
			s.apply(record, CostInput{
				SpecName:              record.SpecName,
				Category:              record.Category,
				Material:              record.Material,
				CoreStructure:         record.CoreStructure,
				TotalWeight:           record.TotalWeight,
				Length:                record.Length,
				ConductorUnitPrice:    newUnitPrice,
				NonConductorUnitPrice: record.NonConductorUnitPrice,
				LaborCost:             record.LaborCost,
				Remark:                record.Remark,
			})
			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("同步成本记录 %s 失败: %w", record.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// SyncVariantPrices 按行情自动调整参与调价的变体售价：
// 新价 = 铜价(元/kg) × 导体重量 + 加工费，偏离超过 0.01 才写库。
// 售价和行情同为人民币，按吨价直接折千克，不走含税含运费的成本口径。
// 返回实际调整的变体数。
func (s *CostService) SyncVariantPrices(ctx context.Context) (int, error) {
	reading, err := s.market.Latest(ctx)
	if err != nil {
		return 0, err
	}
	copperPerKg := reading.CnyPrice / 1000

	variants, err := s.catalogRepo.ListAutoPricedVariants()
	if err != nil {
		return 0, err
	}

	updated := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range variants {
			v := &variants[i]
			newPrice := s.engine.VariantAutoPrice(copperPerKg, v.ConductorWeight, v.ProcessCost)
			if math.Abs(newPrice-v.Price) <= 0.01 {
				continue
			}
			if err := tx.Model(&entity.ProductVariant{}).Where("id = ?", v.ID).
				Update("price", newPrice).Error; err != nil {
				return fmt.Errorf("调整变体 %s 售价失败: %w", v.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.logger.Info("variant prices synced with market",
			zap.Int("updated", updated),
			zap.Float64("copper_per_kg", copperPerKg))
	}
	return updated, nil
}

// ExportExcel 导出全部成本记录为 xlsx
func (s *CostService) ExportExcel(w io.Writer) error {
	records, err := s.costRepo.ListAll()
	if err != nil {
		return fmt.Errorf("读取成本记录失败: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "成本表"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"型号", "分类", "材质", "芯线结构", "总重量(kg)", "长度(m)",
		"导体单价", "非导体单价", "人工费", "导体重量", "导体金额",
		"非导体重量", "非导体金额", "总成本", "参考价"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range records {
		values := []interface{}{
			r.SpecName, r.Category, r.Material, formatCoreStructure(r.CoreStructure),
			r.TotalWeight, r.Length,
			r.ConductorUnitPrice, r.NonConductorUnitPrice, r.LaborCost,
			r.ConductorWeight, r.ConductorAmount,
			r.NonConductorWeight, r.NonConductorAmount,
			r.TotalCost, r.ReferencePrice,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写出 Excel 失败: %w", err)
	}
	return nil
}

// formatCoreStructure 芯线结构的可读形式，如 3×7×1.35 + 1×7×1.04
func formatCoreStructure(cs entity.CoreStructure) string {
	parts := make([]string, 0, len(cs))
	for _, g := range cs {
		parts = append(parts, fmt.Sprintf("%d×%d×%g", g.Cores, g.Strands, g.Gauge))
	}
	return strings.Join(parts, " + ")
}
