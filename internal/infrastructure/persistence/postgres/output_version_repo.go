package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"repurpose-ai-api/internal/domain/entity"
)

// OutputVersionRepository 产出版本仓储实现（仅追加）
type OutputVersionRepository struct {
	client *Client
}

// NewOutputVersionRepository 创建产出版本仓储
func NewOutputVersionRepository(client *Client) *OutputVersionRepository {
	return &OutputVersionRepository{client: client}
}

// Append 追加版本记录
func (r *OutputVersionRepository) Append(ctx context.Context, version *entity.OutputVersion) error {
	ctx, span := tracer.Start(ctx, "postgres.OutputVersionRepository.Append")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO output_versions (id, output_id, content, created_at)
		VALUES (gen_random_uuid(), $1, $2, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query, version.OutputID, version.Content).
		Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append output version: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取版本
func (r *OutputVersionRepository) GetByID(ctx context.Context, id string) (*entity.OutputVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputVersionRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT id, output_id, content, created_at FROM output_versions WHERE id = $1`

	var version entity.OutputVersion
	err := q.QueryRowContext(ctx, query, id).Scan(
		&version.ID, &version.OutputID, &version.Content, &version.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get output version: %w", err)
	}

	return &version, nil
}

// ListByOutput 按创建时间倒序返回产出的全部版本
func (r *OutputVersionRepository) ListByOutput(ctx context.Context, outputID string) ([]*entity.OutputVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutputVersionRepository.ListByOutput")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, output_id, content, created_at
		FROM output_versions
		WHERE output_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.QueryContext(ctx, query, outputID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list output versions: %w", err)
	}
	defer rows.Close()

	var versions []*entity.OutputVersion
	for rows.Next() {
		var version entity.OutputVersion
		if err := rows.Scan(&version.ID, &version.OutputID, &version.Content, &version.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan output version: %w", err)
		}
		versions = append(versions, &version)
	}

	return versions, nil
}
