package entity

import (
	"time"
)

// HistoryAction 项目历史动作类型
type HistoryAction string

const (
	HistoryActionGenerate   HistoryAction = "generate"
	HistoryActionEdit       HistoryAction = "edit"
	HistoryActionRevert     HistoryAction = "revert"
	HistoryActionInvalidate HistoryAction = "cache_invalidate"
)

// ProjectHistory 项目审计历史。生成完成后的尽力而为副作用，
// 写入失败不影响生成结果。
type ProjectHistory struct {
	ID           string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID    string        `json:"project_id" gorm:"type:uuid;index;not null"`
	UserID       string        `json:"user_id" gorm:"type:uuid;index"`
	Action       HistoryAction `json:"action" gorm:"type:varchar(50);not null"`
	Platforms    StringSlice   `json:"platforms,omitempty" gorm:"type:jsonb"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Detail       JSONMap       `json:"detail,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ProjectHistory) TableName() string {
	return "project_histories"
}
