package entity

import (
	"time"
)

// News 资讯
type News struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title       string    `json:"title" gorm:"size:255;not null;index"`
	Summary     string    `json:"summary" gorm:"size:500"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	ImageURL    string    `json:"image_url" gorm:"size:500"`
	IsPublished bool      `json:"is_published" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

// TechnicalSpec 技术参数（国标/实测对照）
type TechnicalSpec struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Model         string    `json:"model" gorm:"size:64;not null;index"`
	Category      string    `json:"category" gorm:"size:64;index"`
	StandardParam string    `json:"standard_param" gorm:"size:255"`
	ActualParam   string    `json:"actual_param" gorm:"size:255"`
	Feature       string    `json:"feature" gorm:"size:500"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TechnicalSpec) TableName() string {
	return "technical_specs"
}
