package repository

import (
	"context"

	"repurpose-ai-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	// GetByID 按 ID 获取项目，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	// GetByIDForOwner 按 ID 获取属主匹配的项目，未找到或属主不符时返回 (nil, nil)
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	// Delete 删除项目并级联删除其产出与版本
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.Project], error)
	// CountByOwner 统计用户项目数（配额检查用，只读）
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
