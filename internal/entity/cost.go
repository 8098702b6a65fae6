package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 导体材质
const (
	MaterialCopper   = "Cu"
	MaterialAluminum = "Al"
)

// CoreGroup 线芯结构中的一组：芯数 × 每芯根数 × 丝号(mm)
type CoreGroup struct {
	Cores   int     `json:"cores"`
	Strands int     `json:"strands"`
	Gauge   float64 `json:"gauge"`
}

// CoreStructure 线芯结构，按 JSON 存储
type CoreStructure []CoreGroup

func (cs CoreStructure) Value() (driver.Value, error) {
	if cs == nil {
		return "[]", nil
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (cs *CoreStructure) Scan(value interface{}) error {
	if value == nil {
		*cs = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("无法解析线芯结构: %T", value)
	}
	return json.Unmarshal(data, cs)
}

// CostRecord 成本核算记录。
// 六个派生字段（导体重/导体金额/非导体重/非导体金额/总成本/参考价）
// 永远由基础输入和导体单价整体重算，不允许单独编辑。
type CostRecord struct {
	ID                    string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SpecName              string        `json:"spec_name" gorm:"size:64;not null;index"`
	Category              string        `json:"category" gorm:"size:64;index"`
	Material              string        `json:"material" gorm:"size:8;not null;default:Cu"`
	CoreStructure         CoreStructure `json:"core_structure" gorm:"type:jsonb;not null"`
	TotalWeight           float64       `json:"total_weight" gorm:"type:decimal(12,4);not null"`
	Length                float64       `json:"length" gorm:"type:decimal(12,2);not null;default:100"`
	ConductorUnitPrice    float64       `json:"conductor_price" gorm:"type:decimal(12,4);not null"`
	NonConductorUnitPrice float64       `json:"non_conductor_price" gorm:"type:decimal(12,4);not null"`
	LaborCost             float64       `json:"labor_cost" gorm:"type:decimal(12,2);not null;default:0"`
	Remark                string        `json:"remark" gorm:"type:text"`

	// 派生字段
	ConductorWeight    float64 `json:"conductor_weight" gorm:"type:decimal(12,4);not null;default:0"`
	ConductorAmount    float64 `json:"conductor_amount" gorm:"type:decimal(12,2);not null;default:0"`
	NonConductorWeight float64 `json:"non_conductor_weight" gorm:"type:decimal(12,4);not null;default:0"`
	NonConductorAmount float64 `json:"non_conductor_amount" gorm:"type:decimal(12,2);not null;default:0"`
	TotalCost          float64 `json:"total_cost" gorm:"type:decimal(12,2);not null;default:0"`
	ReferencePrice     float64 `json:"reference_price" gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CostRecord) TableName() string {
	return "cost_records"
}
