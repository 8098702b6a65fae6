package service

import (
	"errors"
	"fmt"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"gorm.io/gorm"
)

// UserService 用户管理（管理员侧）
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(params repository.UserListParams) ([]entity.User, int64, error) {
	return s.userRepo.List(params)
}

func (s *UserService) Get(id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListDrivers 司机列表，指派订单用
func (s *UserService) ListDrivers() ([]entity.User, error) {
	return s.userRepo.ListDrivers()
}

// UserUpdateInput 部分更新，nil 字段不动
type UserUpdateInput struct {
	Username     *string  `json:"username"`
	CompanyName  *string  `json:"company_name"`
	Role         *string  `json:"role"`
	IsActive     *bool    `json:"is_active"`
	DiscountRate *float64 `json:"discount_rate"`
}

// Update 管理员更新用户资料/角色/折扣率。
// 折扣率限定 [0, 1)，只影响之后创建的订单。
func (s *UserService) Update(id string, in UserUpdateInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.CompanyName != nil {
		user.CompanyName = *in.CompanyName
	}
	if in.Role != nil {
		switch *in.Role {
		case entity.RoleAdmin, entity.RoleUser, entity.RoleDriver:
			user.Role = *in.Role
		default:
			return nil, fmt.Errorf("未知角色 %s: %w", *in.Role, ErrValidation)
		}
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.DiscountRate != nil {
		if *in.DiscountRate < 0 || *in.DiscountRate >= 1 {
			return nil, fmt.Errorf("折扣率必须在 [0, 1) 区间: %w", ErrValidation)
		}
		user.DiscountRate = *in.DiscountRate
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}
