package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"gorm.io/gorm"
)

// CatalogService 分类/产品/变体管理
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	costRepo    *repository.CostRepository
	media       *MediaStore
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, costRepo *repository.CostRepository, media *MediaStore) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, costRepo: costRepo, media: media}
}

// --- Category ---

type CategoryInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

func (s *CatalogService) CreateCategory(in CategoryInput) (*entity.Category, error) {
	if in.ParentID != nil {
		if _, err := s.catalogRepo.GetCategoryByID(*in.ParentID); err != nil {
			return nil, fmt.Errorf("父分类不存在: %w", ErrValidation)
		}
	}
	cat := &entity.Category{
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
	}
	if err := s.catalogRepo.CreateCategory(cat); err != nil {
		return nil, fmt.Errorf("创建分类失败: %w", err)
	}
	return cat, nil
}

func (s *CatalogService) ListCategories(flat bool) ([]entity.Category, error) {
	return s.catalogRepo.ListCategories(flat)
}

func (s *CatalogService) UpdateCategory(id string, in CategoryInput) (*entity.Category, error) {
	cat, err := s.catalogRepo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.ParentID != nil && *in.ParentID == id {
		return nil, fmt.Errorf("分类不能作为自己的父分类: %w", ErrValidation)
	}
	cat.Name = in.Name
	cat.Description = in.Description
	cat.ParentID = in.ParentID
	if err := s.catalogRepo.UpdateCategory(cat); err != nil {
		return nil, fmt.Errorf("更新分类失败: %w", err)
	}
	return cat, nil
}

func (s *CatalogService) DeleteCategory(id string) error {
	return s.catalogRepo.DeleteCategory(id)
}

// --- Product ---

type VariantInput struct {
	Spec            string  `json:"spec" binding:"required"`
	Color           string  `json:"color"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	Unit            string  `json:"unit"`
	SkuCode         string  `json:"sku_code"`
	ConductorWeight float64 `json:"conductor_weight"`
	ProcessCost     float64 `json:"process_cost"`
}

type ProductInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Unit        string         `json:"unit"`
	CategoryID  *string        `json:"category_id"`
	Variants    []VariantInput `json:"variants"`
}

func buildVariants(inputs []VariantInput) ([]entity.ProductVariant, error) {
	variants := make([]entity.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		if in.Price < 0 || in.Stock < 0 {
			return nil, fmt.Errorf("变体价格和库存不能为负: %w", ErrValidation)
		}
		variants = append(variants, entity.ProductVariant{
			Spec:            in.Spec,
			Color:           in.Color,
			Price:           Round2(in.Price),
			Stock:           in.Stock,
			Unit:            in.Unit,
			SkuCode:         in.SkuCode,
			ConductorWeight: in.ConductorWeight,
			ProcessCost:     in.ProcessCost,
		})
	}
	return variants, nil
}

func (s *CatalogService) CreateProduct(in ProductInput) (*entity.Product, error) {
	variants, err := buildVariants(in.Variants)
	if err != nil {
		return nil, err
	}
	p := &entity.Product{
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
		CategoryID:  in.CategoryID,
		HasVariants: len(variants) > 0,
		Variants:    variants,
	}
	if err := s.catalogRepo.CreateProduct(p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return p, nil
}

func (s *CatalogService) GetProduct(id string) (*entity.Product, error) {
	p, err := s.catalogRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts(params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.catalogRepo.ListProducts(params)
}

// UpdateProduct 更新产品基本信息；Variants 非 nil 时全量替换变体
func (s *CatalogService) UpdateProduct(id string, in ProductInput) (*entity.Product, error) {
	p, err := s.catalogRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	if in.Unit != "" {
		p.Unit = in.Unit
	}
	p.CategoryID = in.CategoryID
	p.Variants = nil
	if err := s.catalogRepo.UpdateProduct(p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}

	if in.Variants != nil {
		variants, err := buildVariants(in.Variants)
		if err != nil {
			return nil, err
		}
		if err := s.catalogRepo.ReplaceVariants(id, variants); err != nil {
			return nil, fmt.Errorf("替换变体失败: %w", err)
		}
	}
	return s.catalogRepo.GetProductByID(id)
}

func (s *CatalogService) DeleteProduct(id string) error {
	return s.catalogRepo.DeleteProduct(id)
}

// UploadProductImage 上传产品主图
func (s *CatalogService) UploadProductImage(ctx context.Context, productID string, data []byte, filename string) (*entity.Product, error) {
	p, err := s.catalogRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := ValidateImage(data); err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, fmt.Errorf("图片存储未配置")
	}
	objectName := fmt.Sprintf("products/%s_%d%s", productID, time.Now().Unix(), extOf(filename))
	url, err := s.media.Save(ctx, objectName, data)
	if err != nil {
		return nil, fmt.Errorf("保存产品图片失败: %w", err)
	}
	p.ImageURL = url
	p.Variants = nil
	if err := s.catalogRepo.UpdateProduct(p); err != nil {
		return nil, err
	}
	return s.catalogRepo.GetProductByID(productID)
}

// PromoteFromCost 把成本记录转化为上架产品：
// 规格取型号名，颜色默认“默认”，售价由管理员给定，
// 加工费 = 人工费 + 非导体金额，导体重量带过去参与自动调价。
func (s *CatalogService) PromoteFromCost(costID string, price float64, stock int, categoryID *string) (*entity.Product, error) {
	if price < 0 || stock < 0 {
		return nil, fmt.Errorf("价格和库存不能为负: %w", ErrValidation)
	}
	record, err := s.costRepo.GetByID(costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("成本记录不存在: %w", ErrNotFound)
		}
		return nil, err
	}

	p := &entity.Product{
		Name:        record.SpecName,
		Description: fmt.Sprintf("由成本核算 %s 转化", record.SpecName),
		CategoryID:  categoryID,
		CostID:      &record.ID,
		HasVariants: true,
		Variants: []entity.ProductVariant{{
			Spec:            record.SpecName,
			Color:           "默认",
			Price:           Round2(price),
			Stock:           stock,
			ConductorWeight: record.ConductorWeight,
			ProcessCost:     Round2(record.LaborCost + record.NonConductorAmount),
		}},
	}
	if err := s.catalogRepo.CreateProduct(p); err != nil {
		return nil, fmt.Errorf("上架产品失败: %w", err)
	}
	return p, nil
}
