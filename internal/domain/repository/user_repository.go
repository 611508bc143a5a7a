package repository

import (
	"context"

	"repurpose-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID 按 ID 获取用户，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail 按邮箱获取用户，未找到时返回 (nil, nil)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// SubscriptionRepository 订阅仓储接口（本服务只读）
type SubscriptionRepository interface {
	// GetActiveByUser 获取用户当前有效订阅，无有效订阅时返回 (nil, nil)
	GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error)
}

// AudioUsageRepository 音频用量仓储接口
type AudioUsageRepository interface {
	Record(ctx context.Context, usage *entity.AudioUsage) error
	// SumMinutesByUser 汇总用户已用音频分钟数
	SumMinutesByUser(ctx context.Context, userID string) (float64, error)
}

// BrandVoiceRepository 品牌语气仓储接口
type BrandVoiceRepository interface {
	// GetByIDForOwner 按 ID 获取属主匹配的品牌语气，未找到时返回 (nil, nil)
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.BrandVoice, error)
}
