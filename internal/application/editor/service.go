// Package editor 提供产出内容的编辑与版本回滚能力
package editor

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/logger"
)

var tracer = otel.Tracer("application.editor")

// Service 产出编辑服务。所有变更先为当前内容追加版本快照再覆盖，
// 快照与覆盖在同一事务内完成。
type Service struct {
	outputRepo  repository.OutputRepository
	versionRepo repository.OutputVersionRepository
	historyRepo repository.ProjectHistoryRepository
	tx          repository.Transactor
}

// NewService 创建编辑服务
func NewService(
	outputRepo repository.OutputRepository,
	versionRepo repository.OutputVersionRepository,
	historyRepo repository.ProjectHistoryRepository,
	tx repository.Transactor,
) *Service {
	return &Service{
		outputRepo:  outputRepo,
		versionRepo: versionRepo,
		historyRepo: historyRepo,
		tx:          tx,
	}
}

// UpdateContent 用户手工编辑产出内容。
// 旧内容先入版本历史，产出标记为已编辑。
func (s *Service) UpdateContent(ctx context.Context, outputID, userID, content string) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "editor.Service.UpdateContent")
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("content must not be empty")
	}

	output, err := s.requireOutput(ctx, outputID, userID)
	if err != nil {
		return nil, err
	}
	if output.Content == content {
		// 无变化时不产生快照
		return output, nil
	}

	updated, err := s.replaceContent(ctx, output, content, true)
	if err != nil {
		return nil, err
	}

	s.recordHistory(ctx, output.ProjectID, userID, entity.HistoryActionEdit, output.Platform)
	return updated, nil
}

// RevertToOriginal 恢复为首次生成的内容。
// 未记录过首次内容时拒绝；恢复后产出不再视为已编辑。
func (s *Service) RevertToOriginal(ctx context.Context, outputID, userID string) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "editor.Service.RevertToOriginal")
	defer span.End()

	output, err := s.requireOutput(ctx, outputID, userID)
	if err != nil {
		return nil, err
	}
	if !output.HasOriginal() {
		return nil, apperrors.ErrNoOriginalContent
	}
	if output.Content == output.OriginalContent {
		updated, err := s.outputRepo.UpdateContent(ctx, output.ID, output.Content, false)
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	updated, err := s.replaceContent(ctx, output, output.OriginalContent, false)
	if err != nil {
		return nil, err
	}

	s.recordHistory(ctx, output.ProjectID, userID, entity.HistoryActionRevert, output.Platform)
	return updated, nil
}

// RevertToVersion 恢复为指定历史版本的内容。
// 版本必须归属该产出，否则拒绝且不产生任何变更。
func (s *Service) RevertToVersion(ctx context.Context, outputID, userID, versionID string) (*entity.Output, error) {
	ctx, span := tracer.Start(ctx, "editor.Service.RevertToVersion")
	defer span.End()

	output, err := s.requireOutput(ctx, outputID, userID)
	if err != nil {
		return nil, err
	}

	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil || version.OutputID != output.ID {
		return nil, apperrors.ErrVersionMismatch
	}
	if output.Content == version.Content {
		return output, nil
	}

	updated, err := s.replaceContent(ctx, output, version.Content, true)
	if err != nil {
		return nil, err
	}

	s.recordHistory(ctx, output.ProjectID, userID, entity.HistoryActionRevert, output.Platform)
	return updated, nil
}

// ListVersions 返回产出的全部历史版本（最新在前）
func (s *Service) ListVersions(ctx context.Context, outputID, userID string) ([]*entity.OutputVersion, error) {
	ctx, span := tracer.Start(ctx, "editor.Service.ListVersions")
	defer span.End()

	output, err := s.requireOutput(ctx, outputID, userID)
	if err != nil {
		return nil, err
	}
	return s.versionRepo.ListByOutput(ctx, output.ID)
}

// requireOutput 获取产出并校验归属；未找到与无权访问不区分
func (s *Service) requireOutput(ctx context.Context, outputID, userID string) (*entity.Output, error) {
	output, err := s.outputRepo.GetByIDForOwner(ctx, outputID, userID)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, apperrors.ErrNotFoundOrAccessDenied
	}
	return output, nil
}

// replaceContent 快照旧内容后覆盖，同一事务
func (s *Service) replaceContent(ctx context.Context, output *entity.Output, content string, isEdited bool) (*entity.Output, error) {
	var updated *entity.Output
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.Append(txCtx, &entity.OutputVersion{
			OutputID: output.ID,
			Content:  output.Content,
		}); err != nil {
			return err
		}

		var err error
		updated, err = s.outputRepo.UpdateContent(txCtx, output.ID, content, isEdited)
		if err != nil {
			return err
		}
		if updated == nil {
			return apperrors.ErrNotFoundOrAccessDenied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// recordHistory 尽力而为的审计副作用
func (s *Service) recordHistory(ctx context.Context, projectID, userID string, action entity.HistoryAction, platform entity.Platform) {
	history := &entity.ProjectHistory{
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
		Platforms: entity.StringSlice{string(platform)},
	}
	if err := s.historyRepo.Create(ctx, history); err != nil {
		logger.Warn(ctx, "failed to record edit history", "error", err.Error())
	}
}
