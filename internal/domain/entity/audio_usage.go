package entity

import (
	"time"
)

// AudioUsage 音频转写用量记录。配额检查按用户汇总分钟数，
// 仅在转写成功后由上传流程追加。
type AudioUsage struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;not null"`
	ProjectID string    `json:"project_id,omitempty" gorm:"type:uuid"`
	Minutes   float64   `json:"minutes" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (AudioUsage) TableName() string {
	return "audio_usages"
}
