package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type CostRepository struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) *CostRepository {
	return &CostRepository{db: db}
}

func (r *CostRepository) Create(c *entity.CostRecord) error {
	return r.db.Create(c).Error
}

func (r *CostRepository) GetByID(id string) (*entity.CostRecord, error) {
	var c entity.CostRecord
	err := r.db.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CostRepository) Update(c *entity.CostRecord) error {
	return r.db.Save(c).Error
}

func (r *CostRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.CostRecord{}).Error
}

type CostListParams struct {
	Category string
	Keyword  string
	Page     int
	Size     int
}

func (r *CostRepository) List(params CostListParams) ([]entity.CostRecord, int64, error) {
	query := r.db.Model(&entity.CostRecord{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("spec_name ILIKE ? OR remark ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var records []entity.CostRecord
	err := query.Order("updated_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&records).Error
	return records, total, err
}

// ListAll 不分页获取全部成本记录（批量重算/导出用）
func (r *CostRepository) ListAll() ([]entity.CostRecord, error) {
	var records []entity.CostRecord
	err := r.db.Order("created_at").Find(&records).Error
	return records, err
}

// ListCategories 获取去重后的分类名列表
func (r *CostRepository) ListCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&entity.CostRecord{}).
		Where("category <> ''").Distinct("category").Order("category").Pluck("category", &categories).Error
	return categories, err
}
