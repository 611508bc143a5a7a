package generation

import (
	"context"
	"time"

	"repurpose-ai-api/internal/config"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	"repurpose-ai-api/internal/workflow/node"
	"repurpose-ai-api/pkg/logger"
)

// RetryClient 带重试与兜底模型切换的文本客户端。
// 主模型最多尝试 maxRetries 次（指数退避），耗尽后切换兜底模型
// 再尝试 maxRetries 次，仍失败则返回最后一个错误。
// 不可重试的错误（鉴权失败、非法请求）立即结束该模型的尝试，
// 因此 2×maxRetries 是底层调用次数的上界而非准确值。
type RetryClient struct {
	client        TextClient
	fallbackModel string
	maxRetries    int
	backoff       config.BackoffConfig
}

// NewRetryClient 创建重试客户端
func NewRetryClient(client TextClient, cfg *config.LLMConfig) *RetryClient {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:        client,
		fallbackModel: cfg.FallbackModel,
		maxRetries:    maxRetries,
		backoff:       cfg.Backoff,
	}
}

// GeneratePostWithRetry 生成文案并返回实际使用的模型
func (r *RetryClient) GeneratePostWithRetry(ctx context.Context, in *wfmodel.PostGenerateInput) (content string, modelUsed string, err error) {
	call := func(ctx context.Context, model string) (string, error) {
		attempt := *in
		attempt.Model = model
		return r.client.GeneratePost(ctx, &attempt)
	}
	return r.generateWithRetry(ctx, in.Model, call)
}

// GeneratePackWithRetry 生成素材包 JSON 并返回实际使用的模型
func (r *RetryClient) GeneratePackWithRetry(ctx context.Context, in *wfmodel.ContentPackBuildInput) (content string, modelUsed string, err error) {
	call := func(ctx context.Context, model string) (string, error) {
		attempt := *in
		attempt.Model = model
		return r.client.GeneratePack(ctx, &attempt)
	}
	return r.generateWithRetry(ctx, in.Model, call)
}

func (r *RetryClient) generateWithRetry(ctx context.Context, primaryModel string, call func(ctx context.Context, model string) (string, error)) (string, string, error) {
	models := []string{primaryModel}
	if r.fallbackModel != "" && r.fallbackModel != primaryModel {
		models = append(models, r.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		content, err := r.tryModel(ctx, model, call)
		if err == nil {
			return content, model, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", "", lastErr
}

// tryModel 在单个模型上重试；不可重试的错误立即放弃该模型
func (r *RetryClient) tryModel(ctx context.Context, model string, call func(ctx context.Context, model string) (string, error)) (string, error) {
	delay := r.backoff.Initial
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	multiplier := r.backoff.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		content, err := call(ctx, model)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !node.IsRetryableError(err) {
			logger.Warn(ctx, "llm call failed with non-retryable error",
				"model", model, "attempt", attempt, "error", err.Error())
			break
		}
		if attempt == r.maxRetries {
			break
		}

		logger.Warn(ctx, "llm call failed, backing off",
			"model", model, "attempt", attempt, "delay", delay.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * multiplier)
		if r.backoff.Max > 0 && delay > r.backoff.Max {
			delay = r.backoff.Max
		}
	}

	return "", lastErr
}
