// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	platformsJSON, _ := json.Marshal(project.Platforms)

	query := `
		INSERT INTO projects (id, owner_id, title, source_content, platforms, posts_per_platform,
			tone, brand_voice_id, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	var brandVoiceID sql.NullString
	if project.BrandVoiceID != "" {
		brandVoiceID = sql.NullString{String: project.BrandVoiceID, Valid: true}
	}

	err := q.QueryRowContext(ctx, query,
		project.OwnerID, project.Title, project.SourceContent, platformsJSON,
		project.PostsPerPlatform, project.Tone, brandVoiceID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, owner_id, title, source_content, platforms, posts_per_platform,
			tone, brand_voice_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project, err := scanProject(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// GetByIDForOwner 根据 ID 获取属主匹配的项目
func (r *ProjectRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByIDForOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, owner_id, title, source_content, platforms, posts_per_platform,
			tone, brand_voice_id, created_at, updated_at
		FROM projects
		WHERE id = $1 AND owner_id = $2
	`

	project, err := scanProject(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	platformsJSON, _ := json.Marshal(project.Platforms)

	var brandVoiceID sql.NullString
	if project.BrandVoiceID != "" {
		brandVoiceID = sql.NullString{String: project.BrandVoiceID, Valid: true}
	}

	query := `
		UPDATE projects
		SET title = $1, source_content = $2, platforms = $3, posts_per_platform = $4,
			tone = $5, brand_voice_id = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		project.Title, project.SourceContent, platformsJSON, project.PostsPerPlatform,
		project.Tone, brandVoiceID, project.ID,
	).Scan(&project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// Delete 删除项目并级联删除产出、版本与缓存条目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	queries := []string{
		`DELETE FROM output_versions WHERE output_id IN (SELECT id FROM outputs WHERE project_id = $1)`,
		`DELETE FROM outputs WHERE project_id = $1`,
		`DELETE FROM cache_entries WHERE project_id = $1`,
		`DELETE FROM project_histories WHERE project_id = $1`,
		`DELETE FROM projects WHERE id = $1`,
	}

	for _, query := range queries {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to delete project: %w", err)
		}
	}

	return nil
}

// ListByOwner 获取用户项目列表
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.ListByOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	countQuery := `SELECT COUNT(*) FROM projects WHERE owner_id = $1`
	if err := q.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `
		SELECT id, owner_id, title, source_content, platforms, posts_per_platform,
			tone, brand_voice_id, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.QueryContext(ctx, query, ownerID, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}

// CountByOwner 统计用户项目数
func (r *ProjectRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.CountByOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var count int64
	query := `SELECT COUNT(*) FROM projects WHERE owner_id = $1`
	if err := q.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return count, nil
}

// scanner 统一 sql.Row 和 sql.Rows 的扫描入口
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(s scanner) (*entity.Project, error) {
	var project entity.Project
	var brandVoiceID sql.NullString
	var platformsJSON []byte

	if err := s.Scan(
		&project.ID, &project.OwnerID, &project.Title, &project.SourceContent,
		&platformsJSON, &project.PostsPerPlatform, &project.Tone, &brandVoiceID,
		&project.CreatedAt, &project.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if brandVoiceID.Valid {
		project.BrandVoiceID = brandVoiceID.String
	}
	json.Unmarshal(platformsJSON, &project.Platforms)

	return &project, nil
}
