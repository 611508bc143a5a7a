package model

import "repurpose-ai-api/internal/domain/entity"

type PostGenerateInput struct {
	ProjectTitle  string
	Platform      entity.Platform
	SourceContent string

	Tone       string
	BrandVoice string

	// SeriesIndex/SeriesTotal 控制系列角色指令；SeriesTotal ≤ 1 不注入
	SeriesIndex int
	SeriesTotal int

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

type PostGenerateOutput struct {
	Content string
	Meta    LLMUsageMeta
}
