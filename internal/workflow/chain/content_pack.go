package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	llmctx "repurpose-ai-api/internal/domain/service"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	workflowport "repurpose-ai-api/internal/workflow/port"
	workflowprompt "repurpose-ai-api/internal/workflow/prompt"
)

// ContentPackChain 素材包压缩链：单次 LLM 调用产出严格 JSON
type ContentPackChain struct {
	factory workflowport.ChatModelFactory
}

func NewContentPackChain(factory workflowport.ChatModelFactory) *ContentPackChain {
	return &ContentPackChain{factory: factory}
}

func (c *ContentPackChain) Invoke(ctx context.Context, in *wfmodel.ContentPackBuildInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.SourceContent) == "" {
		return nil, fmt.Errorf("source content is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "content_pack_build", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatContentPackMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in.Model, in.Temperature, in.MaxTokens)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

var contentPackPromptRegistry = workflowprompt.NewRegistry()

func formatContentPackMessages(ctx context.Context, in *wfmodel.ContentPackBuildInput) ([]*schema.Message, error) {
	tpl, err := contentPackPromptRegistry.ChatTemplate(workflowprompt.PromptContentPackV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"project_title":  strings.TrimSpace(in.ProjectTitle),
		"source_content": strings.TrimSpace(in.SourceContent),
		"brand_voice":    orDefault(in.BrandVoice, "none"),
	}
	return tpl.Format(ctx, vars)
}
