package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
)

// CacheEntryRepository 生成结果缓存仓储实现。
// 过期条目只在读取时被过滤，物理删除由 DeleteExpired 负责。
type CacheEntryRepository struct {
	client *Client
}

// NewCacheEntryRepository 创建缓存仓储
func NewCacheEntryRepository(client *Client) *CacheEntryRepository {
	return &CacheEntryRepository{client: client}
}

// Get 按键读取未过期条目
func (r *CacheEntryRepository) Get(ctx context.Context, key string, now time.Time) (*entity.CacheEntry, error) {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.Get")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT key, project_id, payload, expires_at, created_at
		FROM cache_entries
		WHERE key = $1 AND expires_at > $2
	`

	var entry entity.CacheEntry
	err := q.QueryRowContext(ctx, query, key, now).Scan(
		&entry.Key, &entry.ProjectID, &entry.Payload, &entry.ExpiresAt, &entry.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return &entry, nil
}

// Put 写入或覆盖条目
func (r *CacheEntryRepository) Put(ctx context.Context, entry *entity.CacheEntry) error {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.Put")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO cache_entries (key, project_id, payload, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key)
		DO UPDATE SET project_id = EXCLUDED.project_id, payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at, created_at = NOW()
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query, entry.Key, entry.ProjectID, entry.Payload, entry.ExpiresAt).
		Scan(&entry.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put cache entry: %w", err)
	}

	return nil
}

// Stats 获取缓存统计
func (r *CacheEntryRepository) Stats(ctx context.Context, now time.Time) (*repository.CacheStats, error) {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.Stats")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE expires_at <= $1),
			COALESCE(SUM(LENGTH(payload::text)), 0)
		FROM cache_entries
	`

	var stats repository.CacheStats
	err := q.QueryRowContext(ctx, query, now).Scan(&stats.Total, &stats.Expired, &stats.SizeBytes)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get cache stats: %w", err)
	}

	return &stats, nil
}

// DeleteExpired 删除过期条目
func (r *CacheEntryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.DeleteExpired")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	result, err := q.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= $1`, now)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// DeleteAll 清空全部条目
func (r *CacheEntryRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.DeleteAll")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	result, err := q.ExecContext(ctx, `DELETE FROM cache_entries`)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// DeleteByProject 删除项目关联的全部条目
func (r *CacheEntryRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.CacheEntryRepository.DeleteByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	result, err := q.ExecContext(ctx, `DELETE FROM cache_entries WHERE project_id = $1`, projectID)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete project cache entries: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}
