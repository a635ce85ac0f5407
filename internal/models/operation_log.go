package models

import "time"

// OperationLog 操作审计日志模型
// 记录经过门户发起的所有写操作，资源本身由后端持久化
type OperationLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;index"`
	Method       string    `json:"method" gorm:"size:10"`
	Path         string    `json:"path" gorm:"size:255"`
	Module       string    `json:"module" gorm:"size:50;index"`         // user, group, pod, vm, template, wizard
	Action       string    `json:"action" gorm:"size:50"`               // create, update, delete, start, shutdown, reboot, deploy, publish
	ResourceType string    `json:"resource_type" gorm:"size:50"`
	ResourceName string    `json:"resource_name" gorm:"size:255"`
	StatusCode   int       `json:"status_code"`
	Success      bool      `json:"success" gorm:"index"`
	ErrorMessage string    `json:"error_message" gorm:"type:text"`
	ClientIP     string    `json:"client_ip" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"size:500"`
	Duration     int64     `json:"duration"` // 毫秒
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// TableName 指定操作日志表名
func (OperationLog) TableName() string {
	return "operation_logs"
}
