package dto

import (
	"repurpose-ai-api/internal/domain/repository"
)

// CacheStatsResponse 缓存统计响应
type CacheStatsResponse struct {
	Total     int64 `json:"total"`
	Expired   int64 `json:"expired"`
	SizeBytes int64 `json:"size_bytes"`
}

// ToCacheStatsResponse 统计转响应
func ToCacheStatsResponse(s *repository.CacheStats) *CacheStatsResponse {
	return &CacheStatsResponse{
		Total:     s.Total,
		Expired:   s.Expired,
		SizeBytes: s.SizeBytes,
	}
}

// CacheCleanResponse 缓存清理响应
type CacheCleanResponse struct {
	Removed int64  `json:"removed"`
	Scope   string `json:"scope"`
}

// QuotaResponse 配额状态响应
type QuotaResponse struct {
	Plan            string  `json:"plan"`
	CanCreate       bool    `json:"can_create"`
	CurrentProjects int64   `json:"current_projects"`
	ProjectLimit    int     `json:"project_limit"`
	AudioAllowed    bool    `json:"audio_allowed"`
	AudioUsed       float64 `json:"audio_used_minutes"`
	AudioLimit      int     `json:"audio_limit_minutes"`
}
