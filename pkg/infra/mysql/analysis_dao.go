package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mfgcopilot/common/entity"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/pkg/config"
)

// ErrAnalysisNotFound 记录不存在，重试无意义
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisDAO 分析记录数据访问对象
type AnalysisDAO struct {
	db *gorm.DB
}

// Open 打开 MySQL 连接并设置连接池（apiserver 仓储与 worker DAO 共用）
func Open(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return db, nil
}

// NewAnalysisDAO 创建 AnalysisDAO 实例
func NewAnalysisDAO(cfg config.MySQLConfig) (*AnalysisDAO, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return &AnalysisDAO{db: db}, nil
}

// SaveResult 写入分析结果并置为 DONE
func (dao *AnalysisDAO) SaveResult(ctx context.Context, analysisID string, result *dfm.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	updates := map[string]interface{}{
		"status":                  entity.AnalysisStatusDone,
		"source":                  string(result.Source),
		"manufacturability_score": result.ManufacturabilityScore,
		"overall_rating":          string(result.OverallRating),
		"result":                  resultJSON,
		"error_message":           "",
	}
	return dao.update(ctx, analysisID, updates)
}

// MarkFailed 置为 FAILED（仅用于输入无法分析的情况）
func (dao *AnalysisDAO) MarkFailed(ctx context.Context, analysisID string, errorMsg string) error {
	if len(errorMsg) > 512 {
		errorMsg = errorMsg[:512]
	}
	updates := map[string]interface{}{
		"status":        entity.AnalysisStatusFailed,
		"error_message": errorMsg,
	}
	return dao.update(ctx, analysisID, updates)
}

func (dao *AnalysisDAO) update(ctx context.Context, analysisID string, updates map[string]interface{}) error {
	dbResult := dao.db.WithContext(ctx).
		Model(&entity.Analysis{}).
		Where("id = ?", analysisID).
		Updates(updates)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update analysis: %w", dbResult.Error)
	}
	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}
	return nil
}

// GetByID 根据 ID 获取分析记录
func (dao *AnalysisDAO) GetByID(ctx context.Context, analysisID string) (*entity.Analysis, error) {
	var analysis entity.Analysis
	result := dao.db.WithContext(ctx).Where("id = ?", analysisID).First(&analysis)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", result.Error)
	}
	return &analysis, nil
}

// Close 关闭数据库连接
func (dao *AnalysisDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
