package handler

import (
	"github.com/gin-gonic/gin"

	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
)

// QuotaHandler 配额状态处理器
type QuotaHandler struct {
	quota *plan.QuotaService
}

// NewQuotaHandler 创建配额状态处理器
func NewQuotaHandler(quota *plan.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// GetQuota 返回当前用户的配额状态（只读，不产生任何副作用）
// @Summary 查询配额状态
// @Tags Quota
// @Produce json
// @Success 200 {object} dto.Response[dto.QuotaResponse]
// @Router /v1/quota [get]
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	projectQuota, err := h.quota.CheckProjectQuota(ctx, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	audioQuota, err := h.quota.CheckAudioQuota(ctx, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, &dto.QuotaResponse{
		Plan:            string(projectQuota.Plan),
		CanCreate:       projectQuota.CanCreate,
		CurrentProjects: projectQuota.Current,
		ProjectLimit:    projectQuota.Limit,
		AudioAllowed:    audioQuota.Allowed,
		AudioUsed:       audioQuota.UsedMinutes,
		AudioLimit:      audioQuota.LimitMinutes,
	})
}
