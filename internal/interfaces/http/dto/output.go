package dto

import (
	"time"

	"repurpose-ai-api/internal/domain/entity"
)

// UpdateOutputContentRequest 编辑产出内容请求
type UpdateOutputContentRequest struct {
	Content string `json:"content" binding:"required,max=200000"`
}

// RevertToVersionRequest 回滚到指定版本请求
type RevertToVersionRequest struct {
	VersionID string `json:"version_id" binding:"required,uuid"`
}

// OutputResponse 产出响应
type OutputResponse struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Platform        string    `json:"platform"`
	Content         string    `json:"content"`
	OriginalContent string    `json:"original_content,omitempty"`
	IsEdited        bool      `json:"is_edited"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToOutputResponse 实体转响应
func ToOutputResponse(o *entity.Output) *OutputResponse {
	return &OutputResponse{
		ID:              o.ID,
		ProjectID:       o.ProjectID,
		Platform:        string(o.Platform),
		Content:         o.Content,
		OriginalContent: o.OriginalContent,
		IsEdited:        o.IsEdited,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOutputResponses 实体列表转响应列表
func ToOutputResponses(outputs []*entity.Output) []*OutputResponse {
	out := make([]*OutputResponse, 0, len(outputs))
	for _, o := range outputs {
		out = append(out, ToOutputResponse(o))
	}
	return out
}

// OutputVersionResponse 产出版本响应
type OutputVersionResponse struct {
	ID        string    `json:"id"`
	OutputID  string    `json:"output_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOutputVersionResponses 版本列表转响应列表（最新在前）
func ToOutputVersionResponses(versions []*entity.OutputVersion) []*OutputVersionResponse {
	out := make([]*OutputVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, &OutputVersionResponse{
			ID:        v.ID,
			OutputID:  v.OutputID,
			Content:   v.Content,
			CreatedAt: v.CreatedAt,
		})
	}
	return out
}
