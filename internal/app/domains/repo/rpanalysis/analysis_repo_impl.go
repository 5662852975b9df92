package rpanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mfgcopilot/common/entity"
	"mfgcopilot/internal/app/domains/entity/etanalysis"
	"mfgcopilot/internal/business/dfm"
)

const maxErrorMessageLen = 512

// AnalysisRepositoryImpl 分析记录仓储实现（MySQL）
type AnalysisRepositoryImpl struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建分析记录仓储实例
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

// Create 创建分析记录，将领域对象转换为 GORM 模型后存储
func (r *AnalysisRepositoryImpl) Create(ctx context.Context, analysis *etanalysis.Analysis) error {
	po, err := toGormModel(analysis)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// UpdateStatus 只写状态相关列，结果列由 worker 负责
func (r *AnalysisRepositoryImpl) UpdateStatus(ctx context.Context, analysis *etanalysis.Analysis) error {
	dbResult := r.db.WithContext(ctx).
		Model(&entity.Analysis{}).
		Where("id = ?", analysis.ID).
		Updates(map[string]interface{}{
			"status":        string(analysis.Status),
			"error_message": truncateMessage(analysis.ErrorMessage),
			"updated_at":    analysis.UpdatedAt,
		})
	if dbResult.Error != nil {
		return fmt.Errorf("update analysis status: %w", dbResult.Error)
	}
	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, analysis.ID)
	}
	return nil
}

// GetByID 根据 ID 查询分析记录，将 GORM 模型转换为领域对象
func (r *AnalysisRepositoryImpl) GetByID(ctx context.Context, analysisID string) (*etanalysis.Analysis, error) {
	var po entity.Analysis
	err := r.db.WithContext(ctx).Where("id = ?", analysisID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, analysisID)
		}
		return nil, err
	}
	return toDomainModel(&po)
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(a *etanalysis.Analysis) (*entity.Analysis, error) {
	po := &entity.Analysis{
		ID:               a.ID,
		RequestID:        a.RequestID,
		Material:         a.Request.Material,
		Process:          a.Request.Process,
		ProductionVolume: a.Request.ProductionVolume,
		AdvancedAnalysis: a.Request.AdvancedAnalysis,
		CADData:          datatypes.JSON(a.Request.CADData),
		Status:           string(a.Status),
		Source:           string(a.Source),
		ErrorMessage:     a.ErrorMessage,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.Result != nil {
		resultJSON, err := json.Marshal(a.Result)
		if err != nil {
			return nil, err
		}
		po.Result = resultJSON
		po.ManufacturabilityScore = a.Result.ManufacturabilityScore
		po.OverallRating = string(a.Result.OverallRating)
	}

	return po, nil
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Analysis) (*etanalysis.Analysis, error) {
	a := &etanalysis.Analysis{
		ID:        po.ID,
		RequestID: po.RequestID,
		Request: &etanalysis.Request{
			CADData:          json.RawMessage(po.CADData),
			Material:         po.Material,
			Process:          po.Process,
			ProductionVolume: po.ProductionVolume,
			AdvancedAnalysis: po.AdvancedAnalysis,
		},
		Status:       etanalysis.Status(po.Status),
		Source:       dfm.Source(po.Source),
		ErrorMessage: po.ErrorMessage,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}

	if len(po.Result) > 0 {
		var result dfm.AnalysisResult
		if err := json.Unmarshal(po.Result, &result); err != nil {
			return nil, fmt.Errorf("decode analysis result: %w", err)
		}
		a.Result = &result
	}

	return a, nil
}

// truncateMessage error_message 列为 varchar(512)
func truncateMessage(msg string) string {
	if len(msg) > maxErrorMessageLen {
		return msg[:maxErrorMessageLen]
	}
	return msg
}
