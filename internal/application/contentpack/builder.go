// Package contentpack 提供源内容压缩为结构化素材包的能力
package contentpack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	"repurpose-ai-api/internal/workflow/node"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/logger"
	"repurpose-ai-api/pkg/metrics"
	"repurpose-ai-api/pkg/utils"
)

var tracer = otel.Tracer("application.contentpack")

// 素材包构建使用低固定温度与有界 token 上限，与平台生成参数解耦
const (
	packTemperature = 0.2
	packMaxTokens   = 2000
)

// PackCache 素材包缓存端口（redis read-through）
type PackCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}

// PackGenerator 素材包文本生成端口，由带重试的文本客户端实现
type PackGenerator interface {
	GeneratePackWithRetry(ctx context.Context, in *wfmodel.ContentPackBuildInput) (content string, modelUsed string, err error)
}

// BuildOptions 素材包构建选项
type BuildOptions struct {
	ProjectTitle      string
	BrandVoice        string
	BrandVoiceID      string
	BrandVoiceUpdated time.Time
	Plan              entity.PlanType
	Model             string
}

// Builder 素材包构建器。同参数的并发构建经 singleflight 合并，
// 缓存命中不触发模型调用。
type Builder struct {
	retry PackGenerator
	cache PackCache
	cfg   *config.GenerationConfig
}

// NewBuilder 创建素材包构建器
func NewBuilder(retry PackGenerator, cache PackCache, cfg *config.GenerationConfig) *Builder {
	return &Builder{
		retry: retry,
		cache: cache,
		cfg:   cfg,
	}
}

// CacheKey 素材包缓存键。源内容、品牌语气（含更新时间）或计划
// 任一变化都会产生新键，旧缓存自然失效。
func CacheKey(projectID, sourceContent, brandVoiceID string, brandVoiceUpdated time.Time, plan entity.PlanType) string {
	var bvUpdated int64
	if !brandVoiceUpdated.IsZero() {
		bvUpdated = brandVoiceUpdated.Unix()
	}
	return fmt.Sprintf("pack:%s:%s:%s:%d:%s",
		projectID, utils.SourceDigest(sourceContent), brandVoiceID, bvUpdated, plan)
}

// NeedsPack 判断源内容是否必须先压缩为素材包
func (b *Builder) NeedsPack(sourceContent string) bool {
	return len([]rune(sourceContent)) >= b.cfg.LongSourceThreshold
}

// GetOrCreate 获取或构建素材包（redis read-through + singleflight）
func (b *Builder) GetOrCreate(ctx context.Context, projectID, sourceContent string, opts BuildOptions) (*entity.ContentPack, error) {
	ctx, span := tracer.Start(ctx, "contentpack.Builder.GetOrCreate")
	defer span.End()

	key := CacheKey(projectID, sourceContent, opts.BrandVoiceID, opts.BrandVoiceUpdated, opts.Plan)

	raw, err := b.cache.GetOrLoadSafe(ctx, key, b.cfg.PackCacheTTL, func() (interface{}, error) {
		pack, buildErr := b.Build(ctx, sourceContent, opts)
		if buildErr != nil {
			return nil, buildErr
		}
		metrics.ContentPackBuildTotal.WithLabelValues("success", "api").Inc()
		return pack, nil
	})
	if err != nil {
		metrics.ContentPackBuildTotal.WithLabelValues("error", "api").Inc()
		span.RecordError(err)
		return nil, err
	}

	var pack entity.ContentPack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidContentPack, "corrupt cached content pack")
	}
	return &pack, nil
}

// Build 直接构建素材包（不经缓存）。响应先去围栏再截取首个
// JSON 对象；必填字段缺失即整体拒绝，绝不返回部分结果。
func (b *Builder) Build(ctx context.Context, sourceContent string, opts BuildOptions) (*entity.ContentPack, error) {
	ctx, span := tracer.Start(ctx, "contentpack.Builder.Build")
	defer span.End()

	if strings.TrimSpace(sourceContent) == "" {
		return nil, apperrors.ErrInsufficientContent.WithDetail("source content is empty")
	}

	temperature := float32(packTemperature)
	maxTokens := packMaxTokens
	in := &wfmodel.ContentPackBuildInput{
		ProjectTitle:  opts.ProjectTitle,
		SourceContent: sourceContent,
		BrandVoice:    opts.BrandVoice,
		Model:         opts.Model,
		Temperature:   &temperature,
		MaxTokens:     &maxTokens,
	}

	raw, modelUsed, err := b.retry.GeneratePackWithRetry(ctx, in)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidContentPack, "content pack generation failed")
	}

	jsonText := node.ExtractJSONObject(raw)

	var pack entity.ContentPack
	if err := json.Unmarshal([]byte(jsonText), &pack); err != nil {
		logger.Warn(ctx, "content pack response is not valid json", "model", modelUsed, "error", err.Error())
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidContentPack, "content pack response is not valid json")
	}

	if missing := pack.MissingFields(); len(missing) > 0 {
		return nil, apperrors.Newf(apperrors.CodeInvalidContentPack,
			"content pack missing required fields: %s", strings.Join(missing, ", "))
	}

	return &pack, nil
}
