package entity

import (
	"time"
)

// InquiryStatus 询价单状态
const (
	InquiryStatusPending  = "PENDING"
	InquiryStatusQuoted   = "QUOTED"
	InquiryStatusAccepted = "ACCEPTED"
	InquiryStatusRejected = "REJECTED"
	InquiryStatusClosed   = "CLOSED"
)

// Inquiry 询价单，流程比订单简单，不涉及库存
type Inquiry struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID           string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Status           string    `json:"status" gorm:"size:16;not null;default:PENDING"`
	UserRemark       string    `json:"user_remark" gorm:"type:text"`
	AdminReply       string    `json:"admin_reply" gorm:"type:text"`
	QuotedTotalPrice *float64  `json:"quoted_total_price" gorm:"type:decimal(12,2)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	User  *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []InquiryItem `json:"items,omitempty" gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}

// InquiryItem 询价明细快照
type InquiryItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InquiryID       string    `json:"inquiry_id" gorm:"type:uuid;not null;index"`
	VariantID       *string   `json:"variant_id" gorm:"type:uuid"`
	ProductName     string    `json:"product_name" gorm:"size:128;not null"`
	ProductSpec     string    `json:"product_spec" gorm:"size:64"`
	ProductColor    string    `json:"product_color" gorm:"size:32"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	QuotedUnitPrice *float64  `json:"quoted_unit_price" gorm:"type:decimal(12,2)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (InquiryItem) TableName() string {
	return "inquiry_items"
}
