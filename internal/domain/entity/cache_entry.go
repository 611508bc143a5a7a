package entity

import (
	"time"
)

// CacheEntry 生成结果缓存条目。键为输入指纹；
// 过期条目视为不存在，读取侧必须按 expires_at 过滤。
type CacheEntry struct {
	Key       string    `json:"key" gorm:"type:varchar(128);primaryKey"`
	ProjectID string    `json:"project_id" gorm:"type:uuid;index;not null"`
	Payload   []byte    `json:"payload" gorm:"type:jsonb;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired 检查条目在给定时间点是否已过期
func (e *CacheEntry) Expired(at time.Time) bool {
	return !e.ExpiresAt.After(at)
}
