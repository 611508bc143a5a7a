// Package generation 提供多平台内容生成编排
package generation

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/workflow/chain"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	"repurpose-ai-api/pkg/metrics"
)

var clientTracer = otel.Tracer("application.generation")

// TextClient 文本生成端口。实现方负责模板渲染与模型调用；
// 模型返回空内容按空串处理，不视为错误。
type TextClient interface {
	GeneratePost(ctx context.Context, in *wfmodel.PostGenerateInput) (string, error)
	GeneratePack(ctx context.Context, in *wfmodel.ContentPackBuildInput) (string, error)
}

// ChainTextClient 基于 Eino 工作流链的 TextClient 实现
type ChainTextClient struct {
	postChain *chain.PostChain
	packChain *chain.ContentPackChain
}

// NewChainTextClient 创建链式文本客户端
func NewChainTextClient(postChain *chain.PostChain, packChain *chain.ContentPackChain) *ChainTextClient {
	return &ChainTextClient{
		postChain: postChain,
		packChain: packChain,
	}
}

// GeneratePost 生成单平台文案
func (c *ChainTextClient) GeneratePost(ctx context.Context, in *wfmodel.PostGenerateInput) (string, error) {
	ctx, span := clientTracer.Start(ctx, "generation.ChainTextClient.GeneratePost")
	defer span.End()

	msg, err := c.postChain.Invoke(ctx, in)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(in.Model, "error").Inc()
		span.RecordError(err)
		return "", err
	}

	metrics.LLMCallsTotal.WithLabelValues(in.Model, "success").Inc()
	recordTokenUsage(in.Model, msg.ResponseMeta)
	return msg.Content, nil
}

func recordTokenUsage(model string, meta *schema.ResponseMeta) {
	if meta == nil || meta.Usage == nil {
		return
	}
	metrics.LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(meta.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// GeneratePack 生成素材包 JSON
func (c *ChainTextClient) GeneratePack(ctx context.Context, in *wfmodel.ContentPackBuildInput) (string, error) {
	ctx, span := clientTracer.Start(ctx, "generation.ChainTextClient.GeneratePack")
	defer span.End()

	msg, err := c.packChain.Invoke(ctx, in)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(in.Model, "error").Inc()
		span.RecordError(err)
		return "", err
	}

	metrics.LLMCallsTotal.WithLabelValues(in.Model, "success").Inc()
	recordTokenUsage(in.Model, msg.ResponseMeta)
	return msg.Content, nil
}
