package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// --- Category ---

func (r *CatalogRepository) CreateCategory(cat *entity.Category) error {
	return r.db.Create(cat).Error
}

func (r *CatalogRepository) GetCategoryByID(id string) (*entity.Category, error) {
	var cat entity.Category
	err := r.db.Preload("Children").Where("id = ?", id).First(&cat).Error
	return &cat, err
}

// ListCategories flat=false 时只返回顶级分类并预加载子分类
func (r *CatalogRepository) ListCategories(flat bool) ([]entity.Category, error) {
	var cats []entity.Category
	query := r.db.Preload("Children").Order("created_at")
	if !flat {
		query = query.Where("parent_id IS NULL")
	}
	err := query.Find(&cats).Error
	return cats, err
}

func (r *CatalogRepository) UpdateCategory(cat *entity.Category) error {
	return r.db.Save(cat).Error
}

// DeleteCategory 删除分类，子分类提升为顶级
func (r *CatalogRepository) DeleteCategory(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Category{}).Error
	})
}

// --- Product ---

func (r *CatalogRepository) CreateProduct(p *entity.Product) error {
	return r.db.Create(p).Error
}

func (r *CatalogRepository) GetProductByID(id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.Preload("Variants").Preload("Category").Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *CatalogRepository) UpdateProduct(p *entity.Product) error {
	return r.db.Save(p).Error
}

func (r *CatalogRepository) DeleteProduct(id string) error {
	return r.db.Select("Variants").Where("id = ?", id).Delete(&entity.Product{}).Error
}

// ReplaceVariants 全量替换产品变体
func (r *CatalogRepository) ReplaceVariants(productID string, variants []entity.ProductVariant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&entity.ProductVariant{}).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = productID
		}
		if len(variants) == 0 {
			return nil
		}
		return tx.Create(&variants).Error
	})
}

type ProductListParams struct {
	CategoryID string
	Keyword    string
	Page       int
	Size       int
}

func (r *CatalogRepository) ListProducts(params ProductListParams) ([]entity.Product, int64, error) {
	query := r.db.Model(&entity.Product{})
	if params.CategoryID != "" {
		query = query.Where("category_id = ?", params.CategoryID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var products []entity.Product
	err := query.Preload("Variants").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&products).Error
	return products, total, err
}

// --- Variant ---

func (r *CatalogRepository) GetVariantByID(id string) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := r.db.Preload("Product").Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *CatalogRepository) UpdateVariant(v *entity.ProductVariant) error {
	return r.db.Save(v).Error
}

// ListAutoPricedVariants 获取启用自动调价的变体（导体重量 > 0）
func (r *CatalogRepository) ListAutoPricedVariants() ([]entity.ProductVariant, error) {
	var variants []entity.ProductVariant
	err := r.db.Where("conductor_weight > 0").Find(&variants).Error
	return variants, err
}
