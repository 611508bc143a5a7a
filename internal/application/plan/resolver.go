// Package plan 提供订阅计划解析与配额检查
package plan

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
)

var tracer = otel.Tracer("application.plan")

// Resolver 计划解析器。解析顺序：有效订阅 > 注册试用期 > free。
type Resolver struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	cfg      *config.PlansConfig
}

// NewResolver 创建计划解析器
func NewResolver(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	cfg *config.PlansConfig,
) *Resolver {
	return &Resolver{
		userRepo: userRepo,
		subRepo:  subRepo,
		cfg:      cfg,
	}
}

// Resolve 解析用户当前计划
func (r *Resolver) Resolve(ctx context.Context, userID string) (entity.PlanType, error) {
	ctx, span := tracer.Start(ctx, "plan.Resolver.Resolve")
	defer span.End()

	sub, err := r.subRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub != nil {
		return sub.Plan, nil
	}

	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.ErrNotFound.WithDetail("user not found")
	}

	trialWindow := time.Duration(r.cfg.TrialDays) * 24 * time.Hour
	if time.Since(user.CreatedAt) < trialWindow {
		return entity.PlanTrial, nil
	}

	return entity.PlanFree, nil
}

// Limits 查询计划的配额上限；未配置的计划按 free 处理
func (r *Resolver) Limits(plan entity.PlanType) config.PlanLimits {
	if limits, ok := r.cfg.Limits[string(plan)]; ok {
		return limits
	}
	return r.cfg.Limits[string(entity.PlanFree)]
}

// ModelParams 查询计划 × 平台的模型参数；平台未单独配置时回落到 "default" 键
func (r *Resolver) ModelParams(plan entity.PlanType, platform entity.Platform) config.ModelParams {
	planModels, ok := r.cfg.Models[string(plan)]
	if !ok {
		planModels = r.cfg.Models[string(entity.PlanFree)]
	}
	if params, ok := planModels[string(platform)]; ok {
		return params
	}
	return planModels["default"]
}
