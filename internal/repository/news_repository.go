package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// --- News ---

func (r *NewsRepository) Create(n *entity.News) error {
	return r.db.Create(n).Error
}

func (r *NewsRepository) GetByID(id string) (*entity.News, error) {
	var n entity.News
	err := r.db.Where("id = ?", id).First(&n).Error
	return &n, err
}

func (r *NewsRepository) Update(n *entity.News) error {
	return r.db.Save(n).Error
}

func (r *NewsRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.News{}).Error
}

func (r *NewsRepository) ListPublished(page, size int) ([]entity.News, int64, error) {
	query := r.db.Model(&entity.News{}).Where("is_published = ?", true)
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	var items []entity.News
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&items).Error
	return items, total, err
}

// --- TechnicalSpec ---

func (r *NewsRepository) CreateSpec(s *entity.TechnicalSpec) error {
	return r.db.Create(s).Error
}

func (r *NewsRepository) GetSpecByID(id string) (*entity.TechnicalSpec, error) {
	var s entity.TechnicalSpec
	err := r.db.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *NewsRepository) UpdateSpec(s *entity.TechnicalSpec) error {
	return r.db.Save(s).Error
}

func (r *NewsRepository) DeleteSpec(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.TechnicalSpec{}).Error
}

type SpecListParams struct {
	Category string
	Keyword  string
	Page     int
	Size     int
}

func (r *NewsRepository) ListSpecs(params SpecListParams) ([]entity.TechnicalSpec, int64, error) {
	query := r.db.Model(&entity.TechnicalSpec{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("model ILIKE ? OR feature ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var specs []entity.TechnicalSpec
	err := query.Order("model").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&specs).Error
	return specs, total, err
}
