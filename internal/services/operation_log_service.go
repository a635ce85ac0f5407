package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/kamino-labs/kamino-portal/internal/models"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// OperationLogService 操作审计日志服务
type OperationLogService struct {
	db *gorm.DB
}

// NewOperationLogService 创建操作审计日志服务
func NewOperationLogService(db *gorm.DB) *OperationLogService {
	return &OperationLogService{db: db}
}

// LogEntry 日志条目（用于记录）
type LogEntry struct {
	Username     string
	Method       string
	Path         string
	Module       string
	Action       string
	ResourceType string
	ResourceName string
	StatusCode   int
	Success      bool
	ErrorMessage string
	ClientIP     string
	UserAgent    string
	Duration     int64
}

// Record 记录操作日志
func (s *OperationLogService) Record(entry *LogEntry) error {
	log := &models.OperationLog{
		Username:     entry.Username,
		Method:       entry.Method,
		Path:         entry.Path,
		Module:       entry.Module,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceName: entry.ResourceName,
		StatusCode:   entry.StatusCode,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
		ClientIP:     entry.ClientIP,
		UserAgent:    entry.UserAgent,
		Duration:     entry.Duration,
		CreatedAt:    time.Now(),
	}

	if err := s.db.Create(log).Error; err != nil {
		logger.Error("记录操作日志失败: %v", err)
		return err
	}
	return nil
}

// RecordAsync 异步记录操作日志（不阻塞请求）
func (s *OperationLogService) RecordAsync(entry *LogEntry) {
	go func() {
		_ = s.Record(entry)
	}()
}

// ListQuery 日志查询条件
type ListQuery struct {
	Username string
	Module   string
	Success  *bool
	Page     int
	PageSize int
}

// ListResult 日志查询结果
type ListResult struct {
	Logs     []models.OperationLog `json:"logs"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// List 分页查询操作日志
func (s *OperationLogService) List(q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}

	query := s.db.Model(&models.OperationLog{})
	if q.Username != "" {
		query = query.Where("username = ?", q.Username)
	}
	if q.Module != "" {
		query = query.Where("module = ?", q.Module)
	}
	if q.Success != nil {
		query = query.Where("success = ?", *q.Success)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.OperationLog
	offset := (q.Page - 1) * q.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(q.PageSize).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &ListResult{
		Logs:     logs,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}
