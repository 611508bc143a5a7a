package handler

import (
	"github.com/gin-gonic/gin"

	"repurpose-ai-api/internal/application/intake"
	"repurpose-ai-api/internal/interfaces/http/dto"
	"repurpose-ai-api/internal/interfaces/http/middleware"
	"repurpose-ai-api/pkg/logger"
)

// maxUploadBytes 单次上传的体积上限
const maxUploadBytes = 64 << 20

// IntakeHandler 源内容接入处理器
type IntakeHandler struct {
	intake *intake.Service
}

// NewIntakeHandler 创建接入处理器
func NewIntakeHandler(intakeSvc *intake.Service) *IntakeHandler {
	return &IntakeHandler{intake: intakeSvc}
}

// FromText 文本直传
// @Summary 文本接入
// @Tags Intake
// @Accept json
// @Produce json
// @Param body body dto.TextIntakeRequest true "源文本"
// @Success 200 {object} dto.Response[dto.IntakeResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/intake/text [post]
func (h *IntakeHandler) FromText(c *gin.Context) {
	var req dto.TextIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.intake.FromText(c.Request.Context(), req.Text)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToIntakeResponse(result))
}

// FromDocument 文档上传接入（multipart: file）
// @Summary 文档接入
// @Tags Intake
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文档文件"
// @Success 200 {object} dto.Response[dto.IntakeResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/intake/document [post]
func (h *IntakeHandler) FromDocument(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "missing file: "+err.Error())
		return
	}
	if fileHeader.Size > maxUploadBytes {
		dto.BadRequest(c, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error(ctx, "failed to open uploaded document", err)
		dto.InternalError(c, "failed to read upload")
		return
	}
	defer f.Close()

	result, err := h.intake.FromDocument(ctx, f, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToIntakeResponse(result))
}

// FromAudio 音频上传接入（multipart: file，可选 project_id）。
// 受音频配额门禁约束，转写成功后记账。
// @Summary 音频接入
// @Tags Intake
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "音频文件"
// @Param project_id formData string false "关联项目 ID"
// @Success 200 {object} dto.Response[dto.IntakeResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Router /v1/intake/audio [post]
func (h *IntakeHandler) FromAudio(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "missing file: "+err.Error())
		return
	}
	if fileHeader.Size > maxUploadBytes {
		dto.BadRequest(c, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error(ctx, "failed to open uploaded audio", err)
		dto.InternalError(c, "failed to read upload")
		return
	}
	defer f.Close()

	projectID := c.PostForm("project_id")

	result, err := h.intake.FromAudio(ctx, userID, projectID, f, fileHeader.Filename)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToIntakeResponse(result))
}
