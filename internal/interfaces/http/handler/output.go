package handler

import (
	"github.com/gin-gonic/gin"

	"repurpose-ai-api/internal/application/editor"
	"repurpose-ai-api/internal/application/project"
	"repurpose-ai-api/internal/domain/repository"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
	apperrors "repurpose-ai-api/pkg/errors"
)

// OutputHandler 产出与版本管理处理器
type OutputHandler struct {
	editor     *editor.Service
	projects   *project.Service
	outputRepo repository.OutputRepository
}

// NewOutputHandler 创建产出管理处理器
func NewOutputHandler(editorSvc *editor.Service, projects *project.Service, outputRepo repository.OutputRepository) *OutputHandler {
	return &OutputHandler{
		editor:     editorSvc,
		projects:   projects,
		outputRepo: outputRepo,
	}
}

// ListProjectOutputs 列出项目的全部产出
// @Summary 列出项目产出
// @Tags Outputs
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[[]dto.OutputResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/outputs [get]
func (h *OutputHandler) ListProjectOutputs(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	// 先做属主校验再列出
	if _, err := h.projects.Get(ctx, projectID, userID); err != nil {
		dto.Fail(c, err)
		return
	}

	outputs, err := h.outputRepo.ListByProject(ctx, projectID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToOutputResponses(outputs))
}

// GetOutput 获取产出详情
// @Summary 获取产出详情
// @Tags Outputs
// @Produce json
// @Param oid path string true "产出 ID"
// @Success 200 {object} dto.Response[dto.OutputResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/outputs/{oid} [get]
func (h *OutputHandler) GetOutput(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	outputID := c.Param("oid")

	output, err := h.outputRepo.GetByIDForOwner(ctx, outputID, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	if output == nil {
		dto.Fail(c, apperrors.ErrNotFoundOrAccessDenied)
		return
	}

	dto.Success(c, dto.ToOutputResponse(output))
}

// UpdateOutputContent 编辑产出内容
// @Summary 编辑产出内容
// @Description 旧内容先入版本历史，产出标记为已编辑
// @Tags Outputs
// @Accept json
// @Produce json
// @Param oid path string true "产出 ID"
// @Param body body dto.UpdateOutputContentRequest true "新内容"
// @Success 200 {object} dto.Response[dto.OutputResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/outputs/{oid}/content [put]
func (h *OutputHandler) UpdateOutputContent(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	outputID := c.Param("oid")

	var req dto.UpdateOutputContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.editor.UpdateContent(ctx, outputID, userID, req.Content)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToOutputResponse(updated))
}

// RevertToOriginal 恢复为首次生成内容
// @Summary 恢复为原始内容
// @Tags Outputs
// @Produce json
// @Param oid path string true "产出 ID"
// @Success 200 {object} dto.Response[dto.OutputResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/outputs/{oid}/revert [post]
func (h *OutputHandler) RevertToOriginal(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	outputID := c.Param("oid")

	updated, err := h.editor.RevertToOriginal(ctx, outputID, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToOutputResponse(updated))
}

// RevertToVersion 恢复为指定历史版本
// @Summary 恢复为指定版本
// @Tags Outputs
// @Accept json
// @Produce json
// @Param oid path string true "产出 ID"
// @Param body body dto.RevertToVersionRequest true "目标版本"
// @Success 200 {object} dto.Response[dto.OutputResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/outputs/{oid}/revert-version [post]
func (h *OutputHandler) RevertToVersion(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	outputID := c.Param("oid")

	var req dto.RevertToVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.editor.RevertToVersion(ctx, outputID, userID, req.VersionID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToOutputResponse(updated))
}

// ListVersions 列出产出的历史版本（最新在前）
// @Summary 列出历史版本
// @Tags Outputs
// @Produce json
// @Param oid path string true "产出 ID"
// @Success 200 {object} dto.Response[[]dto.OutputVersionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/outputs/{oid}/versions [get]
func (h *OutputHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	outputID := c.Param("oid")

	versions, err := h.editor.ListVersions(ctx, outputID, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToOutputVersionResponses(versions))
}
