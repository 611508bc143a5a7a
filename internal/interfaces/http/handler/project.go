package handler

import (
	"github.com/gin-gonic/gin"

	"repurpose-ai-api/internal/application/project"
	"repurpose-ai-api/internal/domain/repository"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
	"repurpose-ai-api/pkg/logger"
)

// ProjectHandler 项目管理处理器
type ProjectHandler struct {
	projects *project.Service
}

// NewProjectHandler 创建项目管理处理器
func NewProjectHandler(projects *project.Service) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// CreateProject 创建项目
// @Summary 创建项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	created, err := h.projects.Create(ctx, userID, req.ToInput())
	if err != nil {
		logger.Error(ctx, "failed to create project", err)
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.ToProjectResponse(created))
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	found, err := h.projects.Get(ctx, projectID, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToProjectResponse(found))
}

// ListProjects 分页列出项目
// @Summary 分页列出项目
// @Tags Projects
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.ProjectResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	pagination := bindPagination(c)
	result, err := h.projects.List(ctx, userID, pagination)
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.Fail(c, err)
		return
	}

	meta := dto.NewPageMeta(result.Page, result.PageSize, int(result.Total))
	dto.SuccessWithPage(c, dto.ToProjectResponses(result.Items), meta)
}

// UpdateProject 更新项目
// @Summary 更新项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.projects.Update(ctx, projectID, userID, req.ToInput())
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToProjectResponse(updated))
}

// DeleteProject 删除项目
// @Summary 删除项目及其产出与缓存
// @Tags Projects
// @Param pid path string true "项目 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	if err := h.projects.Delete(ctx, projectID, userID); err != nil {
		dto.Fail(c, err)
		return
	}

	dto.NoContent(c)
}

// bindPagination 解析分页查询参数
func bindPagination(c *gin.Context) repository.Pagination {
	var query struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	_ = c.ShouldBindQuery(&query)
	return repository.NewPagination(query.Page, query.PageSize)
}
