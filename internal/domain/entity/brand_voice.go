package entity

import (
	"time"
)

// BrandVoice 品牌语气设定。参与提示词构建，
// 其更新时间参与缓存指纹，变更后相关缓存自动失效。
type BrandVoice struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      string    `json:"user_id" gorm:"type:uuid;index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (BrandVoice) TableName() string {
	return "brand_voices"
}
