package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "repurpose-ai-api/internal/domain/service"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	workflowport "repurpose-ai-api/internal/workflow/port"
	workflowprompt "repurpose-ai-api/internal/workflow/prompt"
)

// PostChain 单平台文案生成链：模板渲染 → ChatModel 调用
type PostChain struct {
	factory workflowport.ChatModelFactory
}

func NewPostChain(factory workflowport.ChatModelFactory) *PostChain {
	return &PostChain{factory: factory}
}

func (c *PostChain) Invoke(ctx context.Context, in *wfmodel.PostGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.SourceContent) == "" {
		return nil, fmt.Errorf("source content is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "post_generate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatPostMessages(ctx, in)
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

var postPromptRegistry = workflowprompt.NewRegistry()

func formatPostMessages(ctx context.Context, in *wfmodel.PostGenerateInput) ([]*schema.Message, error) {
	promptID, err := workflowprompt.PromptForPlatform(string(in.Platform))
	if err != nil {
		return nil, err
	}
	tpl, err := postPromptRegistry.ChatTemplate(promptID)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"project_title":       strings.TrimSpace(in.ProjectTitle),
		"source_content":      strings.TrimSpace(in.SourceContent),
		"tone":                orDefault(in.Tone, "neutral"),
		"brand_voice":         orDefault(in.BrandVoice, "none"),
		"series_instructions": workflowprompt.SeriesInstruction(in.SeriesIndex, in.SeriesTotal),
	}
	return tpl.Format(ctx, vars)
}

func buildModelOptions(modelName string, temperature *float32, maxTokens *int) []model.Option {
	opts := make([]model.Option, 0, 3)
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	if strings.TrimSpace(modelName) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(modelName)))
	}
	return opts
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
