package dto

import (
	"time"

	"repurpose-ai-api/internal/application/generation"
)

// GenerateRequest 批量生成请求。
// 字段均可缺省：源内容缺省用项目存储内容，平台缺省用项目配置。
type GenerateRequest struct {
	SourceContent string   `json:"source_content" binding:"max=200000"`
	Platforms     []string `json:"platforms" binding:"max=10"`
}

// PlatformResultResponse 单平台生成结果响应
type PlatformResultResponse struct {
	Platform    string    `json:"platform"`
	OutputID    string    `json:"output_id,omitempty"`
	Content     string    `json:"content,omitempty"`
	Model       string    `json:"model,omitempty"`
	Source      string    `json:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Error       string    `json:"error,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
}

// BulkGenerationResponse 批量生成响应
type BulkGenerationResponse struct {
	Successful     []*PlatformResultResponse `json:"successful"`
	Failed         []*PlatformResultResponse `json:"failed"`
	TotalRequested int                       `json:"total_requested"`
}

// ToBulkGenerationResponse 汇总结果转响应
func ToBulkGenerationResponse(r *generation.BulkGenerationResult) *BulkGenerationResponse {
	return &BulkGenerationResponse{
		Successful:     toPlatformResults(r.Successful),
		Failed:         toPlatformResults(r.Failed),
		TotalRequested: r.TotalRequested,
	}
}

func toPlatformResults(results []generation.PlatformResult) []*PlatformResultResponse {
	out := make([]*PlatformResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, &PlatformResultResponse{
			Platform:    string(r.Platform),
			OutputID:    r.OutputID,
			Content:     r.Content,
			Model:       r.Model,
			Source:      string(r.Source),
			GeneratedAt: r.GeneratedAt,
			Error:       r.Error,
			ErrorCode:   r.ErrorCode,
		})
	}
	return out
}
