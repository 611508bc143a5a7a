// Package cache 提供生成缓存的运维操作
package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	"repurpose-ai-api/pkg/logger"
	"repurpose-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("application.cache")

// PackInvalidator 素材包缓存失效端口（redis pattern 删除）
type PackInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string) error
}

// Service 缓存运维服务。统计与清理作用于生成结果缓存（postgres），
// 项目级失效同时覆盖素材包缓存（redis）。
type Service struct {
	cacheRepo   repository.CacheEntryRepository
	packs       PackInvalidator
	historyRepo repository.ProjectHistoryRepository
}

// NewService 创建缓存运维服务
func NewService(cacheRepo repository.CacheEntryRepository, packs PackInvalidator, historyRepo repository.ProjectHistoryRepository) *Service {
	return &Service{
		cacheRepo:   cacheRepo,
		packs:       packs,
		historyRepo: historyRepo,
	}
}

// Stats 返回生成缓存的统计信息
func (s *Service) Stats(ctx context.Context) (*repository.CacheStats, error) {
	ctx, span := tracer.Start(ctx, "cache.Service.Stats")
	defer span.End()

	return s.cacheRepo.Stats(ctx, time.Now())
}

// CleanExpired 删除已过期的缓存条目，返回删除数量
func (s *Service) CleanExpired(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "cache.Service.CleanExpired")
	defer span.End()

	removed, err := s.cacheRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		span.RecordError(err)
		metrics.CacheOperations.WithLabelValues("clean", "error").Inc()
		return 0, err
	}

	metrics.CacheOperations.WithLabelValues("clean", "ok").Inc()
	logger.Info(ctx, "expired cache entries removed", "count", removed)
	return removed, nil
}

// CleanAll 无条件清空生成缓存，返回删除数量。
// 破坏性操作，确认令牌由接口层校验。
func (s *Service) CleanAll(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "cache.Service.CleanAll")
	defer span.End()

	removed, err := s.cacheRepo.DeleteAll(ctx)
	if err != nil {
		span.RecordError(err)
		metrics.CacheOperations.WithLabelValues("clean", "error").Inc()
		return 0, err
	}

	metrics.CacheOperations.WithLabelValues("clean", "ok").Inc()
	logger.Info(ctx, "all cache entries removed", "count", removed)
	return removed, nil
}

// InvalidateProject 使项目关联的全部缓存失效：
// 生成结果缓存按项目删除，素材包缓存按键模式删除。
func (s *Service) InvalidateProject(ctx context.Context, projectID, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "cache.Service.InvalidateProject")
	defer span.End()

	removed, err := s.cacheRepo.DeleteByProject(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		metrics.CacheOperations.WithLabelValues("clean", "error").Inc()
		return 0, err
	}

	if s.packs != nil {
		if err := s.packs.InvalidateProject(ctx, projectID); err != nil {
			// 素材包缓存会随 TTL 自然过期，失败仅记录
			logger.Warn(ctx, "failed to invalidate content pack cache",
				"project_id", projectID, "error", err.Error())
		}
	}

	metrics.CacheOperations.WithLabelValues("clean", "ok").Inc()

	if s.historyRepo != nil {
		history := &entity.ProjectHistory{
			ProjectID: projectID,
			UserID:    userID,
			Action:    entity.HistoryActionInvalidate,
			Detail:    entity.JSONMap{"removed": removed},
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			logger.Warn(ctx, "failed to record cache invalidation history", "error", err.Error())
		}
	}

	return removed, nil
}
