package analysis

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/apimodel/request"
	"mfgcopilot/internal/app/domains/apimodel/response"
	"mfgcopilot/internal/app/pkg/errorx"
	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/pkg/logger"
)

// Create 创建异步分析
// POST /api/v1/analyses?wait=10
func (h *AnalysisHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req request.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	analysis, err := h.analysisService.Submit(ctx, logger.TraceID(ctx), req.ToAnalysisRequest(), waitSeconds)
	if err != nil {
		if errors.Is(err, errorx.ErrMalformedInput) {
			ginx.BadRequest(c, err.Error())
			return
		}
		h.logger.Errorf(ctx, "[AnalysisHandler] create analysis failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	if !analysis.Finished() {
		ginx.Processing(c, analysis.ID, fmt.Sprintf("/api/v1/analyses/%s", analysis.ID))
		return
	}
	ginx.Success(c, response.FromAnalysisEntity(analysis))
}
