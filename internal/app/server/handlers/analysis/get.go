package analysis

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/apimodel/response"
	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取分析记录
// @Description  创建分析返回 code=3001 时，通过此接口轮询结果
// @Tags         analyses
// @Produce      json
// @Param        id path string true "分析ID（UUID）"
// @Success      200 {object} ginx.Response{data=response.AnalysisResponse} "查询成功"
// @Failure      404 {object} ginx.Response "记录不存在"
// @Failure      500 {object} ginx.Response "服务器错误"
// @Security     ApiKeyAuth
// @Router       /api/v1/analyses/{id} [get]
func (h *AnalysisHandler) Get(c *gin.Context) {
	analysisID := c.Param("id")
	if analysisID == "" {
		ginx.BadRequest(c, "analysis id required")
		return
	}

	analysis, err := h.analysisService.Get(c.Request.Context(), analysisID)
	if err != nil {
		if errors.Is(err, errorx.ErrAnalysisNotFound) {
			ginx.NotFound(c, "analysis not found")
			return
		}
		h.logger.Errorf(c.Request.Context(), "[AnalysisHandler] get analysis failed: %v", err)
		ginx.InternalError(c, "internal server error")
		return
	}

	ginx.Success(c, response.FromAnalysisEntity(analysis))
}
