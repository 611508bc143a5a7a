package repository

import (
	"context"

	"repurpose-ai-api/internal/domain/entity"
)

// ProjectHistoryRepository 项目审计历史仓储接口
type ProjectHistoryRepository interface {
	Create(ctx context.Context, history *entity.ProjectHistory) error
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.ProjectHistory], error)
}
