package plan

import (
	"context"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/metrics"
)

// ProjectQuota 项目配额检查结果
type ProjectQuota struct {
	Plan      entity.PlanType `json:"plan"`
	CanCreate bool            `json:"can_create"`
	Current   int64           `json:"current"`
	Limit     int             `json:"limit"`
}

// AudioQuota 音频配额检查结果
type AudioQuota struct {
	Plan         entity.PlanType `json:"plan"`
	Allowed      bool            `json:"allowed"`
	UsedMinutes  float64         `json:"used_minutes"`
	LimitMinutes int             `json:"limit_minutes"`
}

// QuotaService 配额检查服务。只读：任何检查都不改变状态。
type QuotaService struct {
	resolver    *Resolver
	projectRepo repository.ProjectRepository
	audioRepo   repository.AudioUsageRepository
}

// NewQuotaService 创建配额检查服务
func NewQuotaService(
	resolver *Resolver,
	projectRepo repository.ProjectRepository,
	audioRepo repository.AudioUsageRepository,
) *QuotaService {
	return &QuotaService{
		resolver:    resolver,
		projectRepo: projectRepo,
		audioRepo:   audioRepo,
	}
}

// CheckProjectQuota 检查用户能否再创建项目
func (s *QuotaService) CheckProjectQuota(ctx context.Context, userID string) (*ProjectQuota, error) {
	ctx, span := tracer.Start(ctx, "plan.QuotaService.CheckProjectQuota")
	defer span.End()

	planType, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, err := s.projectRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits := s.resolver.Limits(planType)
	quota := &ProjectQuota{
		Plan:      planType,
		CanCreate: current < int64(limits.MaxProjects),
		Current:   current,
		Limit:     limits.MaxProjects,
	}

	if !quota.CanCreate {
		metrics.QuotaRejections.WithLabelValues(string(planType), "project").Inc()
	}
	return quota, nil
}

// RequireProjectQuota 项目配额硬门禁，超限返回 QuotaExceeded
func (s *QuotaService) RequireProjectQuota(ctx context.Context, userID string) error {
	quota, err := s.CheckProjectQuota(ctx, userID)
	if err != nil {
		return err
	}
	if !quota.CanCreate {
		return apperrors.Newf(apperrors.CodeQuotaExceeded,
			"project quota exceeded: %d/%d on plan %s", quota.Current, quota.Limit, quota.Plan)
	}
	return nil
}

// CheckAudioQuota 检查用户能否继续使用音频转写；计划音频额度为 0 时直接拒绝
func (s *QuotaService) CheckAudioQuota(ctx context.Context, userID string) (*AudioQuota, error) {
	ctx, span := tracer.Start(ctx, "plan.QuotaService.CheckAudioQuota")
	defer span.End()

	planType, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.audioRepo.SumMinutesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits := s.resolver.Limits(planType)
	quota := &AudioQuota{
		Plan:         planType,
		Allowed:      limits.AudioMinutes > 0 && used < float64(limits.AudioMinutes),
		UsedMinutes:  used,
		LimitMinutes: limits.AudioMinutes,
	}

	if !quota.Allowed {
		metrics.QuotaRejections.WithLabelValues(string(planType), "audio").Inc()
	}
	return quota, nil
}

// RequireAudioQuota 音频配额硬门禁
func (s *QuotaService) RequireAudioQuota(ctx context.Context, userID string) error {
	quota, err := s.CheckAudioQuota(ctx, userID)
	if err != nil {
		return err
	}
	if !quota.Allowed {
		return apperrors.Newf(apperrors.CodeQuotaExceeded,
			"audio quota exceeded: %.1f/%d minutes on plan %s", quota.UsedMinutes, quota.LimitMinutes, quota.Plan)
	}
	return nil
}
