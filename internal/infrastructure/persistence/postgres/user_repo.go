package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"repurpose-ai-api/internal/domain/entity"
	apperrors "repurpose-ai-api/pkg/errors"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// UserRepository 用户仓储实现
type UserRepository struct {
	client *Client
}

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户，邮箱冲突时返回 CodeConflict
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return apperrors.New(apperrors.CodeConflict, "email already registered")
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByEmail")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(q.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func scanUser(s scanner) (*entity.User, error) {
	var user entity.User
	if err := s.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// SubscriptionRepository 订阅仓储实现（只读）
type SubscriptionRepository struct {
	client *Client
}

// NewSubscriptionRepository 创建订阅仓储
func NewSubscriptionRepository(client *Client) *SubscriptionRepository {
	return &SubscriptionRepository{client: client}
}

// GetActiveByUser 获取用户当前有效订阅
func (r *SubscriptionRepository) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.GetActiveByUser")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, user_id, plan, status, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = $2 AND current_period_end > NOW()
		ORDER BY current_period_end DESC
		LIMIT 1
	`

	var sub entity.Subscription
	err := q.QueryRowContext(ctx, query, userID, entity.SubscriptionActive).Scan(
		&sub.ID, &sub.UserID, &sub.Plan, &sub.Status, &sub.CurrentPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return &sub, nil
}

// AudioUsageRepository 音频用量仓储实现
type AudioUsageRepository struct {
	client *Client
}

// NewAudioUsageRepository 创建音频用量仓储
func NewAudioUsageRepository(client *Client) *AudioUsageRepository {
	return &AudioUsageRepository{client: client}
}

// Record 追加用量记录
func (r *AudioUsageRepository) Record(ctx context.Context, usage *entity.AudioUsage) error {
	ctx, span := tracer.Start(ctx, "postgres.AudioUsageRepository.Record")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO audio_usages (id, user_id, project_id, minutes, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())
		RETURNING id, created_at
	`

	var projectID sql.NullString
	if usage.ProjectID != "" {
		projectID = sql.NullString{String: usage.ProjectID, Valid: true}
	}

	err := q.QueryRowContext(ctx, query, usage.UserID, projectID, usage.Minutes).
		Scan(&usage.ID, &usage.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record audio usage: %w", err)
	}

	return nil
}

// SumMinutesByUser 汇总用户已用音频分钟数
func (r *AudioUsageRepository) SumMinutesByUser(ctx context.Context, userID string) (float64, error) {
	ctx, span := tracer.Start(ctx, "postgres.AudioUsageRepository.SumMinutesByUser")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var minutes float64
	query := `SELECT COALESCE(SUM(minutes), 0) FROM audio_usages WHERE user_id = $1`
	if err := q.QueryRowContext(ctx, query, userID).Scan(&minutes); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum audio usage: %w", err)
	}

	return minutes, nil
}

// BrandVoiceRepository 品牌语气仓储实现
type BrandVoiceRepository struct {
	client *Client
}

// NewBrandVoiceRepository 创建品牌语气仓储
func NewBrandVoiceRepository(client *Client) *BrandVoiceRepository {
	return &BrandVoiceRepository{client: client}
}

// GetByIDForOwner 获取属主匹配的品牌语气
func (r *BrandVoiceRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.BrandVoice, error) {
	ctx, span := tracer.Start(ctx, "postgres.BrandVoiceRepository.GetByIDForOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM brand_voices
		WHERE id = $1 AND user_id = $2
	`

	var voice entity.BrandVoice
	err := q.QueryRowContext(ctx, query, id, ownerID).Scan(
		&voice.ID, &voice.UserID, &voice.Name, &voice.Description,
		&voice.CreatedAt, &voice.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get brand voice: %w", err)
	}

	return &voice, nil
}
