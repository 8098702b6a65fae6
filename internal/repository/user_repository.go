package repository

import (
	"github.com/rein-lin153/CableWeb/internal/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *UserRepository) Update(u *entity.User) error {
	return r.db.Save(u).Error
}

type UserListParams struct {
	Role    string
	Keyword string
	Page    int
	Size    int
}

func (r *UserRepository) List(params UserListParams) ([]entity.User, int64, error) {
	query := r.db.Model(&entity.User{})
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("email ILIKE ? OR username ILIKE ? OR company_name ILIKE ?", kw, kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var users []entity.User
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&users).Error
	return users, total, err
}

// ListDrivers 获取全部司机
func (r *UserRepository) ListDrivers() ([]entity.User, error) {
	var drivers []entity.User
	err := r.db.Where("role = ?", entity.RoleDriver).Order("created_at").Find(&drivers).Error
	return drivers, err
}
