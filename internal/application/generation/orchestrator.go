package generation

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"repurpose-ai-api/internal/application/contentpack"
	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	"repurpose-ai-api/internal/infrastructure/messaging"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/logger"
	"repurpose-ai-api/pkg/metrics"
	"repurpose-ai-api/pkg/tracer"
)

// Orchestrator 多平台生成编排器。
// 前置检查按序执行（配额门禁 → 项目归属），任一失败整体拒绝；
// 通过后各平台独立扇出，单平台失败不影响其余平台。
type Orchestrator struct {
	quota       *plan.QuotaService
	resolver    *plan.Resolver
	projectRepo repository.ProjectRepository
	outputRepo  repository.OutputRepository
	versionRepo repository.OutputVersionRepository
	cacheRepo   repository.CacheEntryRepository
	historyRepo repository.ProjectHistoryRepository
	voiceRepo   repository.BrandVoiceRepository
	retry       *RetryClient
	packs       *contentpack.Builder
	producer    *messaging.Producer
	tx          repository.Transactor
	cfg         *config.Config
}

// NewOrchestrator 创建生成编排器
func NewOrchestrator(
	quota *plan.QuotaService,
	resolver *plan.Resolver,
	projectRepo repository.ProjectRepository,
	outputRepo repository.OutputRepository,
	versionRepo repository.OutputVersionRepository,
	cacheRepo repository.CacheEntryRepository,
	historyRepo repository.ProjectHistoryRepository,
	voiceRepo repository.BrandVoiceRepository,
	retry *RetryClient,
	packs *contentpack.Builder,
	producer *messaging.Producer,
	tx repository.Transactor,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		quota:       quota,
		resolver:    resolver,
		projectRepo: projectRepo,
		outputRepo:  outputRepo,
		versionRepo: versionRepo,
		cacheRepo:   cacheRepo,
		historyRepo: historyRepo,
		voiceRepo:   voiceRepo,
		retry:       retry,
		packs:       packs,
		producer:    producer,
		tx:          tx,
		cfg:         cfg,
	}
}

// GenerateForPlatforms 为指定平台集生成内容。
// sourceContent 为空时使用项目存储的源内容；platforms 为空时使用
// 项目配置的平台集。结果数组的顺序为完成顺序。
func (o *Orchestrator) GenerateForPlatforms(ctx context.Context, projectID, userID, sourceContent string, platforms []string) (*BulkGenerationResult, error) {
	ctx, span := tracer.Start(ctx, "generation.Orchestrator.GenerateForPlatforms")
	defer span.End()

	start := time.Now()

	// 前置检查 1：配额门禁（任何生成成本发生之前）
	if err := o.quota.RequireProjectQuota(ctx, userID); err != nil {
		return nil, err
	}

	// 前置检查 2：项目存在且归属调用方
	project, err := o.projectRepo.GetByIDForOwner(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.ErrNotFoundOrAccessDenied
	}

	if strings.TrimSpace(sourceContent) == "" {
		sourceContent = project.SourceContent
	}
	if strings.TrimSpace(sourceContent) == "" {
		return nil, apperrors.ErrInsufficientContent.WithDetail("project has no source content")
	}

	if len(platforms) == 0 {
		platforms = project.Platforms
	}
	if len(platforms) == 0 {
		return nil, apperrors.ErrInvalidParam.WithDetail("no target platforms specified")
	}

	planType, err := o.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 品牌语气参与提示词与缓存指纹
	var voiceText, voiceID string
	var voiceUpdated time.Time
	if project.BrandVoiceID != "" {
		voice, err := o.voiceRepo.GetByIDForOwner(ctx, project.BrandVoiceID, userID)
		if err != nil {
			return nil, err
		}
		if voice != nil {
			voiceText = strings.TrimSpace(voice.Name + ": " + voice.Description)
			voiceID = voice.ID
			voiceUpdated = voice.UpdatedAt
		}
	}

	// 长文先压缩为素材包，保证提示词有界
	promptSource := sourceContent
	if o.packs.NeedsPack(sourceContent) {
		pack, err := o.packs.GetOrCreate(ctx, projectID, sourceContent, contentpack.BuildOptions{
			ProjectTitle:      project.Title,
			BrandVoice:        voiceText,
			BrandVoiceID:      voiceID,
			BrandVoiceUpdated: voiceUpdated,
			Plan:              planType,
			Model:             o.resolver.ModelParams(planType, "default").Model,
		})
		if err != nil {
			return nil, err
		}
		promptSource = pack.Condensed()
	}

	seriesTotal := project.PostsPerPlatform
	if seriesTotal < 1 {
		seriesTotal = 1
	}

	result := &BulkGenerationResult{TotalRequested: len(platforms)}
	var mu sync.Mutex

	concurrency := o.cfg.Generation.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, raw := range platforms {
		g.Go(func() error {
			pr := o.generatePlatform(gctx, project, planType, raw, promptSource, voiceText, voiceID, voiceUpdated, seriesTotal)

			mu.Lock()
			if pr.Error == "" {
				result.Successful = append(result.Successful, pr)
			} else {
				result.Failed = append(result.Failed, pr)
			}
			mu.Unlock()

			// 单平台失败不中断其余平台
			return nil
		})
	}
	g.Wait()

	o.recordHistory(ctx, project, userID, platforms, result)

	logger.Info(ctx, "bulk generation settled",
		"project_id", projectID,
		"requested", result.TotalRequested,
		"successful", len(result.Successful),
		"failed", len(result.Failed),
		"elapsed", time.Since(start).String(),
	)
	return result, nil
}

// generatePlatform 单平台生成任务，永不 panic，错误记入结果
func (o *Orchestrator) generatePlatform(ctx context.Context, project *entity.Project, planType entity.PlanType, rawPlatform, promptSource, voiceText, voiceID string, voiceUpdated time.Time, seriesTotal int) PlatformResult {
	start := time.Now()

	platform, ok := entity.NormalizePlatform(rawPlatform)
	if !ok {
		metrics.GenerationTotal.WithLabelValues(rawPlatform, "error", "api").Inc()
		return PlatformResult{
			Platform:  entity.Platform(rawPlatform),
			Error:     "unsupported platform: " + rawPlatform,
			ErrorCode: string(apperrors.CodeUnsupportedPlatform),
		}
	}

	ctx = logger.WithContext(ctx, logger.PlatformKey, string(platform))
	ctx, span := tracer.Start(ctx, "generation.Orchestrator.generatePlatform")
	defer span.End()

	params := o.resolver.ModelParams(planType, platform)

	parts := make([]string, 0, seriesTotal)
	source := SourceCache
	for i := 1; i <= seriesTotal; i++ {
		content, partSource, err := o.generatePart(ctx, project, platform, params, promptSource, voiceText, voiceID, voiceUpdated, i, seriesTotal)
		if err != nil {
			span.RecordError(err)
			metrics.GenerationTotal.WithLabelValues(string(platform), "error", "api").Inc()
			return PlatformResult{
				Platform:  platform,
				Error:     err.Error(),
				ErrorCode: string(apperrors.AsAppError(err).Code),
			}
		}
		if partSource == SourceAPI {
			source = SourceAPI
		}
		parts = append(parts, content)
	}

	content := strings.Join(parts, "\n\n---\n\n")

	outputID, err := o.persistOutput(ctx, project.ID, platform, content)
	if err != nil {
		span.RecordError(err)
		metrics.GenerationTotal.WithLabelValues(string(platform), "error", string(source)).Inc()
		return PlatformResult{
			Platform:  platform,
			Error:     err.Error(),
			ErrorCode: string(apperrors.CodeDatabaseError),
		}
	}

	metrics.GenerationTotal.WithLabelValues(string(platform), "success", string(source)).Inc()
	metrics.GenerationDuration.WithLabelValues(string(platform)).Observe(time.Since(start).Seconds())

	return PlatformResult{
		Platform:    platform,
		OutputID:    outputID,
		Content:     content,
		Model:       params.Model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Source:      source,
		GeneratedAt: time.Now(),
	}
}

// generatePart 单篇生成：缓存探测 → 未命中时调用模型并回填
func (o *Orchestrator) generatePart(ctx context.Context, project *entity.Project, platform entity.Platform, params config.ModelParams, promptSource, voiceText, voiceID string, voiceUpdated time.Time, seriesIndex, seriesTotal int) (string, ResultSource, error) {
	fp := Fingerprint(FingerprintInput{
		SourceContent:     promptSource,
		Platform:          platform,
		Model:             params.Model,
		Temperature:       params.Temperature,
		MaxTokens:         params.MaxTokens,
		SeriesIndex:       seriesIndex,
		SeriesTotal:       seriesTotal,
		BrandVoiceID:      voiceID,
		BrandVoiceUpdated: voiceUpdated,
	})

	now := time.Now()
	if entry, err := o.cacheRepo.Get(ctx, fp, now); err == nil && entry != nil {
		var payload cachePayload
		if jsonErr := json.Unmarshal(entry.Payload, &payload); jsonErr == nil && payload.Content != "" {
			metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
			return payload.Content, SourceCache, nil
		}
	}
	metrics.CacheOperations.WithLabelValues("get", "miss").Inc()

	temperature := float32(params.Temperature)
	maxTokens := params.MaxTokens
	in := &wfmodel.PostGenerateInput{
		ProjectTitle:  project.Title,
		Platform:      platform,
		SourceContent: promptSource,
		Tone:          project.Tone,
		BrandVoice:    voiceText,
		SeriesIndex:   seriesIndex,
		SeriesTotal:   seriesTotal,
		Model:         params.Model,
		Temperature:   &temperature,
		MaxTokens:     &maxTokens,
	}

	content, modelUsed, err := o.retry.GeneratePostWithRetry(ctx, in)
	if err != nil {
		return "", SourceAPI, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "generation failed for "+string(platform))
	}

	payload, _ := json.Marshal(cachePayload{
		Content:     content,
		Model:       modelUsed,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		GeneratedAt: now,
	})
	entry := &entity.CacheEntry{
		Key:       fp,
		ProjectID: project.ID,
		Payload:   payload,
		ExpiresAt: now.Add(o.cfg.Generation.CacheTTL),
	}
	if err := o.cacheRepo.Put(ctx, entry); err != nil {
		// 缓存回填失败不影响生成结果
		logger.Warn(ctx, "failed to store generation cache entry", "error", err.Error())
		metrics.CacheOperations.WithLabelValues("put", "error").Inc()
	} else {
		metrics.CacheOperations.WithLabelValues("put", "ok").Inc()
	}

	return content, SourceAPI, nil
}

// persistOutput 产出落库：upsert + 覆盖前内容的版本快照，同一事务
func (o *Orchestrator) persistOutput(ctx context.Context, projectID string, platform entity.Platform, content string) (string, error) {
	output := &entity.Output{
		ProjectID: projectID,
		Platform:  platform,
		Content:   content,
	}

	err := o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		prior, created, err := o.outputRepo.Upsert(txCtx, output)
		if err != nil {
			return err
		}
		if !created && prior != "" {
			return o.versionRepo.Append(txCtx, &entity.OutputVersion{
				OutputID: output.ID,
				Content:  prior,
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return output.ID, nil
}

// recordHistory 生成结束后的尽力而为审计副作用
func (o *Orchestrator) recordHistory(ctx context.Context, project *entity.Project, userID string, platforms []string, result *BulkGenerationResult) {
	history := &entity.ProjectHistory{
		ProjectID:    project.ID,
		UserID:       userID,
		Action:       entity.HistoryActionGenerate,
		Platforms:    entity.StringSlice(platforms),
		SuccessCount: len(result.Successful),
		FailureCount: len(result.Failed),
		Detail: entity.JSONMap{
			"total_requested": result.TotalRequested,
		},
	}
	if err := o.historyRepo.Create(ctx, history); err != nil {
		logger.Warn(ctx, "failed to record generation history", "error", err.Error())
	}

	if o.producer != nil {
		msg := &messaging.AuditLogMessage{
			UserID:       userID,
			ProjectID:    project.ID,
			Action:       string(entity.HistoryActionGenerate),
			Platforms:    platforms,
			SuccessCount: len(result.Successful),
			FailureCount: len(result.Failed),
			RequestID:    requestIDFromContext(ctx),
			TraceID:      tracer.TraceID(ctx),
		}
		if _, err := o.producer.PublishAuditLog(ctx, msg); err != nil {
			logger.Warn(ctx, "failed to publish audit log", "error", err.Error())
		}
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		return v
	}
	return ""
}
