package entity

import (
	"time"
)

// PlanType 订阅计划类型
type PlanType string

const (
	PlanFree       PlanType = "free"
	PlanTrial      PlanType = "trial"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

// SubscriptionStatus 订阅状态
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Subscription 订阅实体。计费生命周期由外部系统维护，本服务只读。
type Subscription struct {
	ID               string             `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           string             `json:"user_id" gorm:"type:uuid;index;not null"`
	Plan             PlanType           `json:"plan" gorm:"type:varchar(50);not null"`
	Status           SubscriptionStatus `json:"status" gorm:"type:varchar(50);default:'active'"`
	CurrentPeriodEnd time.Time          `json:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive 检查订阅在给定时间点是否有效
func (s *Subscription) IsActive(at time.Time) bool {
	return s.Status == SubscriptionActive && s.CurrentPeriodEnd.After(at)
}
