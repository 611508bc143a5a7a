package repository

import (
	"context"
	"time"

	"repurpose-ai-api/internal/domain/entity"
)

// CacheStats 缓存统计信息。SizeBytes 为载荷字节数之和，仅为近似值。
type CacheStats struct {
	Total     int64 `json:"total"`
	Expired   int64 `json:"expired"`
	SizeBytes int64 `json:"size_bytes"`
}

// CacheEntryRepository 生成结果缓存仓储接口
type CacheEntryRepository interface {
	// Get 按键读取未过期条目；不存在或已过期返回 (nil, nil)
	Get(ctx context.Context, key string, now time.Time) (*entity.CacheEntry, error)
	// Put 写入或覆盖条目
	Put(ctx context.Context, entry *entity.CacheEntry) error
	Stats(ctx context.Context, now time.Time) (*CacheStats, error)
	// DeleteExpired 仅删除过期条目，返回删除数量
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// DeleteAll 无条件清空，返回删除数量
	DeleteAll(ctx context.Context) (int64, error)
	// DeleteByProject 删除项目关联的全部条目（无论是否过期），返回删除数量
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}
