package dto

import (
	"time"

	"repurpose-ai-api/internal/application/project"
	"repurpose-ai-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title            string   `json:"title" binding:"required,max=255"`
	SourceContent    string   `json:"source_content" binding:"max=200000"`
	Platforms        []string `json:"platforms" binding:"max=10"`
	PostsPerPlatform int      `json:"posts_per_platform" binding:"gte=0,lte=3"`
	Tone             string   `json:"tone" binding:"max=100"`
	BrandVoiceID     string   `json:"brand_voice_id" binding:"omitempty,uuid"`
}

// ToInput 转换为应用层输入
func (r *CreateProjectRequest) ToInput() project.CreateInput {
	return project.CreateInput{
		Title:            r.Title,
		SourceContent:    r.SourceContent,
		Platforms:        r.Platforms,
		PostsPerPlatform: r.PostsPerPlatform,
		Tone:             r.Tone,
		BrandVoiceID:     r.BrandVoiceID,
	}
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title            *string  `json:"title,omitempty" binding:"omitempty,max=255"`
	SourceContent    *string  `json:"source_content,omitempty" binding:"omitempty,max=200000"`
	Platforms        []string `json:"platforms,omitempty" binding:"omitempty,max=10"`
	PostsPerPlatform *int     `json:"posts_per_platform,omitempty" binding:"omitempty,gte=1,lte=3"`
	Tone             *string  `json:"tone,omitempty" binding:"omitempty,max=100"`
	BrandVoiceID     *string  `json:"brand_voice_id,omitempty" binding:"omitempty,uuid|eq="`
}

// ToInput 转换为应用层输入
func (r *UpdateProjectRequest) ToInput() project.UpdateInput {
	return project.UpdateInput{
		Title:            r.Title,
		SourceContent:    r.SourceContent,
		Platforms:        r.Platforms,
		PostsPerPlatform: r.PostsPerPlatform,
		Tone:             r.Tone,
		BrandVoiceID:     r.BrandVoiceID,
	}
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	SourceContent    string    `json:"source_content,omitempty"`
	Platforms        []string  `json:"platforms"`
	PostsPerPlatform int       `json:"posts_per_platform"`
	Tone             string    `json:"tone,omitempty"`
	BrandVoiceID     string    `json:"brand_voice_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToProjectResponse 实体转响应
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:               p.ID,
		Title:            p.Title,
		SourceContent:    p.SourceContent,
		Platforms:        p.Platforms,
		PostsPerPlatform: p.PostsPerPlatform,
		Tone:             p.Tone,
		BrandVoiceID:     p.BrandVoiceID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProjectResponses 实体列表转响应列表
func ToProjectResponses(projects []*entity.Project) []*ProjectResponse {
	out := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ToProjectResponse(p))
	}
	return out
}
