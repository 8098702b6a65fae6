package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) GetByID(id string) (*entity.Inquiry, error) {
	var inq entity.Inquiry
	err := r.db.Preload("Items").Preload("User").
		Where("id = ?", id).First(&inq).Error
	return &inq, err
}

func (r *InquiryRepository) Update(inq *entity.Inquiry) error {
	return r.db.Save(inq).Error
}

type InquiryListParams struct {
	UserID string
	Status string
	Page   int
	Size   int
}

func (r *InquiryRepository) List(params InquiryListParams) ([]entity.Inquiry, int64, error) {
	query := r.db.Model(&entity.Inquiry{})
	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var inquiries []entity.Inquiry
	err := query.Preload("Items").Preload("User").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&inquiries).Error
	return inquiries, total, err
}
