package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
)

// ProjectHistoryRepository 项目审计历史仓储实现
type ProjectHistoryRepository struct {
	client *Client
}

// NewProjectHistoryRepository 创建审计历史仓储
func NewProjectHistoryRepository(client *Client) *ProjectHistoryRepository {
	return &ProjectHistoryRepository{client: client}
}

// Create 写入历史记录
func (r *ProjectHistoryRepository) Create(ctx context.Context, history *entity.ProjectHistory) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectHistoryRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	platformsJSON, _ := json.Marshal(history.Platforms)
	detailJSON, _ := json.Marshal(history.Detail)

	query := `
		INSERT INTO project_histories (id, project_id, user_id, action, platforms,
			success_count, failure_count, detail, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		history.ProjectID, history.UserID, history.Action, platformsJSON,
		history.SuccessCount, history.FailureCount, detailJSON,
	).Scan(&history.ID, &history.CreatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project history: %w", err)
	}

	return nil
}

// ListByProject 按创建时间倒序分页返回项目历史
func (r *ProjectHistoryRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectHistory], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectHistoryRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	countQuery := `SELECT COUNT(*) FROM project_histories WHERE project_id = $1`
	if err := q.QueryRowContext(ctx, countQuery, projectID).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count project histories: %w", err)
	}

	query := `
		SELECT id, project_id, user_id, action, platforms, success_count, failure_count, detail, created_at
		FROM project_histories
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.QueryContext(ctx, query, projectID, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list project histories: %w", err)
	}
	defer rows.Close()

	var histories []*entity.ProjectHistory
	for rows.Next() {
		var history entity.ProjectHistory
		var platformsJSON, detailJSON []byte

		if err := rows.Scan(
			&history.ID, &history.ProjectID, &history.UserID, &history.Action,
			&platformsJSON, &history.SuccessCount, &history.FailureCount,
			&detailJSON, &history.CreatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan project history: %w", err)
		}

		json.Unmarshal(platformsJSON, &history.Platforms)
		json.Unmarshal(detailJSON, &history.Detail)
		histories = append(histories, &history)
	}

	return repository.NewPagedResult(histories, total, pagination), nil
}
