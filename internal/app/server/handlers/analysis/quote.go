package analysis

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/apimodel/request"
	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/app/pkg/ginx"
)

// Quote godoc
// @Summary      快速成本报价
// @Description  不带 CAD 数据，按工艺、材料与体积估算成本和交期；不做规则检测
// @Tags         costs
// @Produce      json
// @Param        process  path  string true  "工艺" example(FDM_PRINTING)
// @Param        material path  string true  "材料" example(PLA)
// @Param        volume   query number false "体积 mm³，默认 1000"
// @Param        quantity query int    false "数量，默认 1"
// @Success      200 {object} ginx.Response{data=dfm.Quote} "报价成功"
// @Failure      400 {object} ginx.Response "参数无效"
// @Failure      401 {object} ginx.Response "API Key 缺失或无效"
// @Security     ApiKeyAuth
// @Router       /api/dfm/costs/{process}/{material} [get]
func (h *AnalysisHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if err := c.ShouldBindUri(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	quote, err := h.analysisService.Quote(ctx, req.Process, req.Material, req.VolumeMM3(), req.Count())
	if err != nil {
		if errors.Is(err, errorx.ErrMalformedInput) {
			ginx.BadRequest(c, err.Error())
			return
		}
		h.logger.Errorf(ctx, "[AnalysisHandler] quote failed: %v", err)
		ginx.InternalError(c, "internal server error")
		return
	}

	ginx.Success(c, quote)
}
