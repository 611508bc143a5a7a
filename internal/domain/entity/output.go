package entity

import (
	"time"
)

// Output 平台产出实体。每个 (project_id, platform) 组合至多一行，
// 再次生成按 upsert 语义覆盖当前内容。
type Output struct {
	ID        string   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string   `json:"project_id" gorm:"type:uuid;index:idx_outputs_project_platform,unique;not null"`
	Platform  Platform `json:"platform" gorm:"type:varchar(50);index:idx_outputs_project_platform,unique;not null"`
	Content   string   `json:"content" gorm:"type:text;not null"`
	// OriginalContent 首次生成内容，单独保留以支持“恢复为原始”
	OriginalContent string    `json:"original_content,omitempty" gorm:"type:text"`
	IsEdited        bool      `json:"is_edited" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Output) TableName() string {
	return "outputs"
}

// HasOriginal 检查是否记录过首次生成内容
func (o *Output) HasOriginal() bool {
	return o.OriginalContent != ""
}

// OutputVersion 产出内容历史版本，仅追加
type OutputVersion struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OutputID  string    `json:"output_id" gorm:"type:uuid;index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (OutputVersion) TableName() string {
	return "output_versions"
}
