package generation

import (
	"time"

	"repurpose-ai-api/internal/domain/entity"
)

// ResultSource 平台结果来源
type ResultSource string

const (
	SourceAPI   ResultSource = "api"
	SourceCache ResultSource = "cache"
)

// PlatformResult 单平台生成结果
type PlatformResult struct {
	Platform    entity.Platform `json:"platform"`
	OutputID    string          `json:"output_id,omitempty"`
	Content     string          `json:"content,omitempty"`
	Model       string          `json:"model,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Source      ResultSource    `json:"source,omitempty"`
	GeneratedAt time.Time       `json:"generated_at,omitempty"`
	Error       string          `json:"error,omitempty"`
	ErrorCode   string          `json:"error_code,omitempty"`
}

// BulkGenerationResult 批量生成汇总。
// Successful/Failed 的顺序为完成顺序，不保证与请求顺序一致。
type BulkGenerationResult struct {
	Successful     []PlatformResult `json:"successful"`
	Failed         []PlatformResult `json:"failed"`
	TotalRequested int              `json:"total_requested"`
}

// cachePayload 生成结果缓存载荷
type cachePayload struct {
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	GeneratedAt time.Time `json:"generated_at"`
}
