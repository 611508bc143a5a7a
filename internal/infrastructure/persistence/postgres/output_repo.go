package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"repurpose-ai-api/internal/domain/entity"
)

// OutputRepository 产出仓储实现
type OutputRepository struct {
	client *Client
}

// NewOutputRepository 创建产出仓储
func NewOutputRepository(client *Client) *OutputRepository {
	return &OutputRepository{client: client}
}

// Upsert 按 (project_id, platform) 幂等写入产出。
// 首次写入记录 original_content；覆盖写入保留原 original_content，
// 重置 is_edited 并返回覆盖前的内容。CTE 读取的是语句开始前的快照，
// 因此 prior 不会看到本次写入的值。
func (r *OutputRepository) Upsert(ctx context.Context, output *entity.Output) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.Upsert")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		WITH prev AS (
			SELECT content FROM outputs WHERE project_id = $1 AND platform = $2
		)
		INSERT INTO outputs (id, project_id, platform, content, original_content, is_edited, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $3, FALSE, NOW(), NOW())
		ON CONFLICT (project_id, platform)
		DO UPDATE SET content = EXCLUDED.content, is_edited = FALSE, updated_at = NOW()
		RETURNING id, original_content, created_at, updated_at,
			(xmax = 0) AS inserted,
			COALESCE((SELECT content FROM prev), '') AS prior
	`

	var inserted bool
	var prior string

	err := q.QueryRowContext(ctx, query, output.ProjectID, output.Platform, output.Content).Scan(
		&output.ID, &output.OriginalContent, &output.CreatedAt, &output.UpdatedAt,
		&inserted, &prior,
	)
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("failed to upsert output: %w", err)
	}

	output.IsEdited = false
	return prior, inserted, nil
}

// GetByID 根据 ID 获取产出
func (r *OutputRepository) GetByID(ctx context.Context, id string) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, project_id, platform, content, original_content, is_edited, created_at, updated_at
		FROM outputs
		WHERE id = $1
	`

	output, err := scanOutput(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get output: %w", err)
	}

	return output, nil
}

// GetByIDForOwner 根据 ID 获取产出并校验项目属主。
// 未找到和属主不符返回同一结果，避免泄露资源是否存在。
func (r *OutputRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.GetByIDForOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT o.id, o.project_id, o.platform, o.content, o.original_content, o.is_edited, o.created_at, o.updated_at
		FROM outputs o
		JOIN projects p ON p.id = o.project_id
		WHERE o.id = $1 AND p.owner_id = $2
	`

	output, err := scanOutput(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get output: %w", err)
	}

	return output, nil
}

// ListByProject 获取项目全部产出
func (r *OutputRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, project_id, platform, content, original_content, is_edited, created_at, updated_at
		FROM outputs
		WHERE project_id = $1
		ORDER BY platform ASC
	`

	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []*entity.Output
	for rows.Next() {
		output, err := scanOutput(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, output)
	}

	return outputs, nil
}

// UpdateContent 覆盖当前内容
func (r *OutputRepository) UpdateContent(ctx context.Context, id, content string, isEdited bool) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.UpdateContent")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE outputs
		SET content = $1, is_edited = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, project_id, platform, content, original_content, is_edited, created_at, updated_at
	`

	output, err := scanOutput(q.QueryRowContext(ctx, query, content, isEdited, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update output content: %w", err)
	}

	return output, nil
}

// DeleteByProject 删除项目全部产出及版本
func (r *OutputRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "postgres.OutputRepository.DeleteByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	if _, err := q.ExecContext(ctx,
		`DELETE FROM output_versions WHERE output_id IN (SELECT id FROM outputs WHERE project_id = $1)`,
		projectID,
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete output versions: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM outputs WHERE project_id = $1`, projectID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete outputs: %w", err)
	}

	return nil
}

func scanOutput(s scanner) (*entity.Output, error) {
	var output entity.Output
	if err := s.Scan(
		&output.ID, &output.ProjectID, &output.Platform, &output.Content,
		&output.OriginalContent, &output.IsEdited, &output.CreatedAt, &output.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &output, nil
}
