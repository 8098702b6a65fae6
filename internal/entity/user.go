package entity

import (
	"time"
)

// UserRole 用户角色
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleDriver = "driver"
)

// User 用户（买家/司机/管理员）
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email          string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Username       string    `json:"username" gorm:"size:64"`
	HashedPassword string    `json:"-" gorm:"size:128;not null"`
	Role           string    `json:"role" gorm:"size:20;not null;default:user"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	CompanyName    string    `json:"company_name" gorm:"size:128"`
	DiscountRate   float64   `json:"discount_rate" gorm:"type:decimal(5,4);default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
