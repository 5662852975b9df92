package request

// QuoteRequest 快速报价请求：路径给出工艺与材料，查询串给出体积与数量
type QuoteRequest struct {
	Process  string   `uri:"process" json:"process" binding:"required,max=32" example:"FDM_PRINTING"`
	Material string   `uri:"material" json:"material" binding:"required,max=32" example:"PLA"`
	Volume   *float64 `form:"volume" json:"volume" binding:"omitempty,gt=0" example:"1000"`
	Quantity *int     `form:"quantity" json:"quantity" binding:"omitempty,gt=0" example:"1"`
}

// VolumeMM3 未给出时为 0，由引擎取默认体积
func (r *QuoteRequest) VolumeMM3() float64 {
	if r.Volume == nil {
		return 0
	}
	return *r.Volume
}

// Count 未给出时为 1
func (r *QuoteRequest) Count() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}
