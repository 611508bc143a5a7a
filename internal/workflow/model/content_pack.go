package model

type ContentPackBuildInput struct {
	ProjectTitle  string
	SourceContent string
	BrandVoice    string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

type ContentPackBuildOutput struct {
	RawJSON string
	Meta    LLMUsageMeta
}
