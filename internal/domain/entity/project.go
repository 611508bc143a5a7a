package entity

import (
	"time"
)

// Project 内容改写项目实体。一个项目持有一份源内容，
// 以及用户选择的目标平台集合。
type Project struct {
	ID               string      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID          string      `json:"owner_id" gorm:"type:uuid;index;not null"`
	Title            string      `json:"title" gorm:"type:varchar(255);not null"`
	SourceContent    string      `json:"source_content" gorm:"type:text"`
	Platforms        StringSlice `json:"platforms" gorm:"type:jsonb"`
	PostsPerPlatform int         `json:"posts_per_platform" gorm:"default:1"`
	Tone             string      `json:"tone,omitempty" gorm:"type:varchar(100)"`
	BrandVoiceID     string      `json:"brand_voice_id,omitempty" gorm:"type:uuid"`
	CreatedAt        time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(ownerID, title, sourceContent string) *Project {
	now := time.Now()
	return &Project{
		OwnerID:          ownerID,
		Title:            title,
		SourceContent:    sourceContent,
		Platforms:        StringSlice{},
		PostsPerPlatform: 1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsOwnedBy 检查项目归属
func (p *Project) IsOwnedBy(userID string) bool {
	return p.OwnerID == userID
}
