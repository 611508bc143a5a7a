package repository

import (
	"context"

	"repurpose-ai-api/internal/domain/entity"
)

// OutputRepository 产出仓储接口
type OutputRepository interface {
	// Upsert 按 (project_id, platform) 幂等写入：
	// 不存在则创建（同时记录 original_content），存在则覆盖当前内容。
	// 返回写入后的行与覆盖前的旧内容（首次创建时 prior 为空、created 为 true）。
	Upsert(ctx context.Context, output *entity.Output) (prior string, created bool, err error)
	// GetByID 按 ID 获取产出，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Output, error)
	// GetByIDForOwner 按 ID 获取产出，并校验其项目属主；
	// 未找到或属主不符一律返回 (nil, nil)，调用方不得区分两种情况。
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Output, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Output, error)
	// UpdateContent 覆盖当前内容并按需设置 is_edited
	UpdateContent(ctx context.Context, id, content string, isEdited bool) (*entity.Output, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

// OutputVersionRepository 产出版本仓储接口（仅追加）
type OutputVersionRepository interface {
	Append(ctx context.Context, version *entity.OutputVersion) error
	// GetByID 按 ID 获取版本，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.OutputVersion, error)
	// ListByOutput 按创建时间倒序（最新在前）返回全部版本
	ListByOutput(ctx context.Context, outputID string) ([]*entity.OutputVersion, error)
}
