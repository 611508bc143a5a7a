package handler

import (
	"github.com/gin-gonic/gin"

	"repurpose-ai-api/internal/application/generation"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
	"repurpose-ai-api/pkg/logger"
)

// GenerationHandler 内容生成处理器
type GenerationHandler struct {
	orchestrator *generation.Orchestrator
}

// NewGenerationHandler 创建内容生成处理器
func NewGenerationHandler(orchestrator *generation.Orchestrator) *GenerationHandler {
	return &GenerationHandler{orchestrator: orchestrator}
}

// Generate 为项目的目标平台批量生成内容
// @Summary 批量生成平台内容
// @Description 为指定平台集并发生成；单平台失败记入 failed，不中断其余平台
// @Tags Generation
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.GenerateRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.BulkGenerationResponse]
// @Failure 402 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx = logger.WithContext(ctx, logger.ProjectIDKey, projectID)

	result, err := h.orchestrator.GenerateForPlatforms(ctx, projectID, userID, req.SourceContent, req.Platforms)
	if err != nil {
		logger.Error(ctx, "bulk generation rejected", err)
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToBulkGenerationResponse(result))
}
