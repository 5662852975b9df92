package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Analysis DFM 分析记录（请求 + 结果）
type Analysis struct {
	// 基础字段
	ID        string `gorm:"column:id;primaryKey;type:varchar(64)"`
	RequestID string `gorm:"column:request_id;type:varchar(64);not null;index:idx_request_id"`

	// 请求参数
	Material         string         `gorm:"column:material;type:varchar(32);not null"`
	Process          string         `gorm:"column:process;type:varchar(32);not null"`
	ProductionVolume int            `gorm:"column:production_volume;not null;default:1"`
	AdvancedAnalysis bool           `gorm:"column:advanced_analysis;not null;default:false"`
	CADData          datatypes.JSON `gorm:"column:cad_data;type:json;not null"`

	// 分析状态与结果
	Status                 string         `gorm:"column:status;type:varchar(16);not null;default:'PENDING';index:idx_status_created"`
	Source                 string         `gorm:"column:source;type:varchar(32)"`
	ManufacturabilityScore int            `gorm:"column:manufacturability_score"`
	OverallRating          string         `gorm:"column:overall_rating;type:varchar(8)"`
	Result                 datatypes.JSON `gorm:"column:result;type:json"`
	ErrorMessage           string         `gorm:"column:error_message;type:varchar(512)"`

	// 时间戳
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_status_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Analysis) TableName() string {
	return "dfm_analyses"
}

// 分析状态常量
const (
	AnalysisStatusPending = "PENDING"
	AnalysisStatusDone    = "DONE"
	AnalysisStatusFailed  = "FAILED"
)
