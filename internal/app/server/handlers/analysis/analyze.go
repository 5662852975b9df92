package analysis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/apimodel/request"
	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/app/pkg/ginx"
)

// Analyze godoc
// @Summary      同步 DFM 分析
// @Description  远端分析服务健康时使用远端结果，否则使用本地规则引擎；响应体为扁平的分析结果
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body body request.AnalyzeRequest true "CAD 摘要与制造参数"
// @Success      200 {object} dfm.AnalysisResult
// @Failure      400 {object} ginx.Response "输入无法解析"
// @Failure      401 {object} ginx.Response "API Key 缺失或无效"
// @Security     ApiKeyAuth
// @Router       /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req request.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), req.ToAnalysisRequest())
	if err != nil {
		if errors.Is(err, errorx.ErrMalformedInput) {
			ginx.BadRequest(c, err.Error())
			return
		}
		h.logger.Errorf(c.Request.Context(), "[AnalysisHandler] analyze failed: %v", err)
		ginx.InternalError(c, "internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}
