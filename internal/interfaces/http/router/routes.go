// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 项目下的生成与产出
		projects.POST("/:pid/generate", h.Generation.Generate)
		projects.GET("/:pid/outputs", h.Output.ListProjectOutputs)

		// 项目级缓存失效
		projects.POST("/:pid/cache/invalidate", h.Cache.InvalidateProject)
	}

	// 产出管理
	outputs := v1.Group("/outputs")
	{
		outputs.GET("/:oid", h.Output.GetOutput)
		outputs.PUT("/:oid/content", h.Output.UpdateOutputContent)
		outputs.POST("/:oid/revert", h.Output.RevertToOriginal)
		outputs.POST("/:oid/revert-version", h.Output.RevertToVersion)
		outputs.GET("/:oid/versions", h.Output.ListVersions)
	}

	// 源内容接入
	intake := v1.Group("/intake")
	{
		intake.POST("/text", h.Intake.FromText)
		intake.POST("/document", h.Intake.FromDocument)
		intake.POST("/audio", h.Intake.FromAudio)
	}

	// 缓存运维
	cache := v1.Group("/cache")
	{
		cache.GET("/stats", h.Cache.Stats)
		cache.POST("/clean", h.Cache.Clean)
	}

	// 配额状态
	v1.GET("/quota", h.Quota.GetQuota)
}
