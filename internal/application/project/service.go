// Package project 提供项目 CRUD 应用服务
package project

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/logger"
)

var tracer = otel.Tracer("application.project")

// PackInvalidator 素材包缓存失效端口
type PackInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string) error
}

// CreateInput 创建项目参数
type CreateInput struct {
	Title            string
	SourceContent    string
	Platforms        []string
	PostsPerPlatform int
	Tone             string
	BrandVoiceID     string
}

// UpdateInput 更新项目参数，nil 字段表示不变
type UpdateInput struct {
	Title            *string
	SourceContent    *string
	Platforms        []string
	PostsPerPlatform *int
	Tone             *string
	BrandVoiceID     *string
}

// Service 项目应用服务。创建受项目配额门禁约束；
// 源内容或品牌语气变更会使项目关联缓存失效。
type Service struct {
	projectRepo repository.ProjectRepository
	voiceRepo   repository.BrandVoiceRepository
	cacheRepo   repository.CacheEntryRepository
	packs       PackInvalidator
	quota       *plan.QuotaService
}

// NewService 创建项目应用服务
func NewService(
	projectRepo repository.ProjectRepository,
	voiceRepo repository.BrandVoiceRepository,
	cacheRepo repository.CacheEntryRepository,
	packs PackInvalidator,
	quota *plan.QuotaService,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		voiceRepo:   voiceRepo,
		cacheRepo:   cacheRepo,
		packs:       packs,
		quota:       quota,
	}
}

// Create 创建项目。配额门禁先行，平台标识在入口处硬校验。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Create")
	defer span.End()

	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("title must not be empty")
	}

	if err := s.quota.RequireProjectQuota(ctx, userID); err != nil {
		return nil, err
	}

	platforms, err := normalizePlatforms(in.Platforms)
	if err != nil {
		return nil, err
	}

	if err := s.validateBrandVoice(ctx, in.BrandVoiceID, userID); err != nil {
		return nil, err
	}

	project := entity.NewProject(userID, strings.TrimSpace(in.Title), in.SourceContent)
	project.Platforms = platforms
	project.PostsPerPlatform = clampPostsPerPlatform(in.PostsPerPlatform)
	project.Tone = in.Tone
	project.BrandVoiceID = in.BrandVoiceID

	if err := s.projectRepo.Create(ctx, project); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "project created", "project_id", project.ID, "platforms", len(platforms))
	return project, nil
}

// Get 获取项目（属主校验）
func (s *Service) Get(ctx context.Context, projectID, userID string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Get")
	defer span.End()

	project, err := s.projectRepo.GetByIDForOwner(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.ErrNotFoundOrAccessDenied
	}
	return project, nil
}

// List 分页列出用户项目
func (s *Service) List(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "project.Service.List")
	defer span.End()

	return s.projectRepo.ListByOwner(ctx, userID, pagination)
}

// Update 更新项目。源内容或品牌语气变化会使关联缓存失效，
// 旧缓存条目因指纹不再匹配本就不可达，失效仅为提前回收。
func (s *Service) Update(ctx context.Context, projectID, userID string, in UpdateInput) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Update")
	defer span.End()

	project, err := s.Get(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	invalidate := false

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperrors.ErrInvalidParam.WithDetail("title must not be empty")
		}
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.SourceContent != nil && *in.SourceContent != project.SourceContent {
		project.SourceContent = *in.SourceContent
		invalidate = true
	}
	if in.Platforms != nil {
		platforms, err := normalizePlatforms(in.Platforms)
		if err != nil {
			return nil, err
		}
		project.Platforms = platforms
	}
	if in.PostsPerPlatform != nil {
		project.PostsPerPlatform = clampPostsPerPlatform(*in.PostsPerPlatform)
	}
	if in.Tone != nil {
		project.Tone = *in.Tone
	}
	if in.BrandVoiceID != nil && *in.BrandVoiceID != project.BrandVoiceID {
		if err := s.validateBrandVoice(ctx, *in.BrandVoiceID, userID); err != nil {
			return nil, err
		}
		project.BrandVoiceID = *in.BrandVoiceID
		invalidate = true
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if invalidate {
		s.invalidateCaches(ctx, projectID)
	}
	return project, nil
}

// Delete 删除项目及其产出、版本与缓存
func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	ctx, span := tracer.Start(ctx, "project.Service.Delete")
	defer span.End()

	if _, err := s.Get(ctx, projectID, userID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateCaches(ctx, projectID)
	logger.Info(ctx, "project deleted", "project_id", projectID)
	return nil
}

func (s *Service) invalidateCaches(ctx context.Context, projectID string) {
	if _, err := s.cacheRepo.DeleteByProject(ctx, projectID); err != nil {
		logger.Warn(ctx, "failed to clean generation cache", "project_id", projectID, "error", err.Error())
	}
	if s.packs != nil {
		if err := s.packs.InvalidateProject(ctx, projectID); err != nil {
			logger.Warn(ctx, "failed to invalidate content pack cache", "project_id", projectID, "error", err.Error())
		}
	}
}

func (s *Service) validateBrandVoice(ctx context.Context, voiceID, userID string) error {
	if voiceID == "" {
		return nil
	}
	voice, err := s.voiceRepo.GetByIDForOwner(ctx, voiceID, userID)
	if err != nil {
		return err
	}
	if voice == nil {
		return apperrors.ErrNotFoundOrAccessDenied.WithDetail("brand voice not found")
	}
	return nil
}

// normalizePlatforms 规范化并去重；任一不支持的平台整体拒绝
func normalizePlatforms(raw []string) (entity.StringSlice, error) {
	seen := make(map[entity.Platform]struct{}, len(raw))
	normalized := make(entity.StringSlice, 0, len(raw))
	for _, r := range raw {
		p, ok := entity.NormalizePlatform(r)
		if !ok {
			return nil, apperrors.Newf(apperrors.CodeUnsupportedPlatform, "unsupported platform: %s", r)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, string(p))
	}
	return normalized, nil
}

func clampPostsPerPlatform(n int) int {
	if n < 1 {
		return 1
	}
	if n > 3 {
		return 3
	}
	return n
}
