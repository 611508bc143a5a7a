package handler

import (
	"github.com/gin-gonic/gin"

	appcache "repurpose-ai-api/internal/application/cache"
	"repurpose-ai-api/internal/application/project"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
)

// CacheHandler 缓存运维处理器（管理端）
type CacheHandler struct {
	cache    *appcache.Service
	projects *project.Service
}

// NewCacheHandler 创建缓存运维处理器
func NewCacheHandler(cacheSvc *appcache.Service, projects *project.Service) *CacheHandler {
	return &CacheHandler{
		cache:    cacheSvc,
		projects: projects,
	}
}

// Stats 缓存统计
// @Summary 缓存统计
// @Tags Cache
// @Produce json
// @Success 200 {object} dto.Response[dto.CacheStatsResponse]
// @Router /v1/cache/stats [get]
func (h *CacheHandler) Stats(c *gin.Context) {
	stats, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.ToCacheStatsResponse(stats))
}

// Clean 清理缓存。scope=expired 仅清理过期条目；
// scope=all 需要 confirm=yes 显式确认。
// @Summary 清理缓存
// @Tags Cache
// @Produce json
// @Param scope query string false "expired 或 all" default(expired)
// @Param confirm query string false "scope=all 时必须为 yes"
// @Success 200 {object} dto.Response[dto.CacheCleanResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/cache/clean [post]
func (h *CacheHandler) Clean(c *gin.Context) {
	ctx := c.Request.Context()

	scope := c.DefaultQuery("scope", "expired")
	switch scope {
	case "expired":
		removed, err := h.cache.CleanExpired(ctx)
		if err != nil {
			dto.Fail(c, err)
			return
		}
		dto.Success(c, &dto.CacheCleanResponse{Removed: removed, Scope: scope})
	case "all":
		if c.Query("confirm") != "yes" {
			dto.BadRequest(c, "cleaning all cache entries requires confirm=yes")
			return
		}
		removed, err := h.cache.CleanAll(ctx)
		if err != nil {
			dto.Fail(c, err)
			return
		}
		dto.Success(c, &dto.CacheCleanResponse{Removed: removed, Scope: scope})
	default:
		dto.BadRequest(c, "scope must be expired or all")
	}
}

// InvalidateProject 使项目关联的全部缓存失效
// @Summary 失效项目缓存
// @Tags Cache
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.CacheCleanResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/cache/invalidate [post]
func (h *CacheHandler) InvalidateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := c.Param("pid")

	// 属主校验先行
	if _, err := h.projects.Get(ctx, projectID, userID); err != nil {
		dto.Fail(c, err)
		return
	}

	removed, err := h.cache.InvalidateProject(ctx, projectID, userID)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, &dto.CacheCleanResponse{Removed: removed, Scope: "project"})
}
