package dfm

import (
	"sort"
	"strings"
)

// ProcessKind 制造工艺
type ProcessKind string

const (
	ProcessFDM              ProcessKind = "FDM_PRINTING"
	ProcessSLA              ProcessKind = "SLA_PRINTING"
	ProcessSLS              ProcessKind = "SLS_PRINTING"
	ProcessCNC              ProcessKind = "CNC_MACHINING"
	ProcessInjectionMolding ProcessKind = "INJECTION_MOLDING"
	ProcessGeneric          ProcessKind = "GENERIC"
)

// processAliases 客户端历史上使用过的工艺名称 → ProcessKind
var processAliases = map[string]ProcessKind{
	"FDM_PRINTING":       ProcessFDM,
	"FDM":                ProcessFDM,
	"3D_PRINTING":        ProcessFDM,
	"FDM_3D_PRINTING":    ProcessFDM,
	"SLA_PRINTING":       ProcessSLA,
	"SLA":                ProcessSLA,
	"SLS_PRINTING":       ProcessSLS,
	"SLS":                ProcessSLS,
	"CNC_MACHINING":      ProcessCNC,
	"CNC":                ProcessCNC,
	"CNC_MILLING":        ProcessCNC,
	"CNC_TURNING":        ProcessCNC,
	"INJECTION_MOLDING":  ProcessInjectionMolding,
	"INJECTION_MOULDING": ProcessInjectionMolding,
	"IM":                 ProcessInjectionMolding,
	"GENERIC":            ProcessGeneric,
}

// ParseProcess 解析工艺名称，空值默认 FDM，未知工艺归为 GENERIC
func ParseProcess(s string) ProcessKind {
	key := canonicalKey(s)
	if key == "" {
		return ProcessFDM
	}
	if p, ok := processAliases[key]; ok {
		return p
	}
	return ProcessGeneric
}

// MaterialKind 材料（大写字符串）
type MaterialKind string

const (
	MaterialPLA            MaterialKind = "PLA"
	MaterialABS            MaterialKind = "ABS"
	MaterialPETG           MaterialKind = "PETG"
	MaterialNylon          MaterialKind = "NYLON"
	MaterialTPU            MaterialKind = "TPU"
	MaterialAluminum       MaterialKind = "ALUMINUM"
	MaterialSteel          MaterialKind = "STEEL"
	MaterialStainlessSteel MaterialKind = "STAINLESS_STEEL"
)

var materialAliases = map[string]MaterialKind{
	"PLA_PLASTIC": MaterialPLA,
	"ABS_PLASTIC": MaterialABS,
	"ALUMINIUM":   MaterialAluminum,
	"STAINLESS":   MaterialStainlessSteel,
	"NYLON_PA12":  MaterialNylon,
}

// ParseMaterial 解析材料名称，空值默认 PLA；未知材料原样保留，计价时走通用费率
func ParseMaterial(s string) MaterialKind {
	key := canonicalKey(s)
	if key == "" {
		return MaterialPLA
	}
	if m, ok := materialAliases[key]; ok {
		return m
	}
	return MaterialKind(key)
}

func canonicalKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Severity 问题严重程度
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityWarning  Severity = "warning"
)

// Rating 可制造性评级
type Rating string

const (
	RatingLow    Rating = "LOW"
	RatingMedium Rating = "MEDIUM"
	RatingHigh   Rating = "HIGH"
)

// Valid 是否为已知评级
func (r Rating) Valid() bool {
	return r == RatingLow || r == RatingMedium || r == RatingHigh
}

// Source 结果来源
type Source string

const (
	SourceCloud         Source = "cloud"
	SourceLocalFallback Source = "local_fallback"
)

// BoundingBox 包围盒（mm）
type BoundingBox struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sorted 升序返回三个尺寸 [s, m, l]
func (b BoundingBox) Sorted() [3]float64 {
	dims := []float64{b.Length, b.Width, b.Height}
	sort.Float64s(dims)
	return [3]float64{dims[0], dims[1], dims[2]}
}

// Complete 三个尺寸均大于 0
func (b BoundingBox) Complete() bool {
	return b.Length > 0 && b.Width > 0 && b.Height > 0
}

// SurfaceArea 包围盒表面积 2(lw+lh+wh)
func (b BoundingBox) SurfaceArea() float64 {
	return 2 * (b.Length*b.Width + b.Length*b.Height + b.Width*b.Height)
}

// Hole 孔特征
type Hole struct {
	DiameterMM float64 `json:"diameter_mm"`
	DepthMM    float64 `json:"depth_mm"`
}

// ThinWall 薄壁特征
type ThinWall struct {
	ThicknessMM float64 `json:"thickness_mm"`
	AreaMM2     float64 `json:"area_mm2"`
}

// GeometrySummary 归一化后的几何特征（单次请求内不可变）
type GeometrySummary struct {
	VolumeMM3      float64     `json:"volume_mm3"`
	SurfaceAreaMM2 float64     `json:"surface_area_mm2"`
	BoundingBox    BoundingBox `json:"bounding_box"`
	Holes          []Hole      `json:"holes"`
	ThinWalls      []ThinWall  `json:"thin_walls"`

	// EstimatedWallThicknessMM 显式给定或由体积/包围盒面积推算，0 表示未知
	EstimatedWallThicknessMM float64 `json:"estimated_wall_thickness_mm"`

	FilletRadiusMM *float64 `json:"fillet_radius_mm,omitempty"`
	DraftAngleDeg  *float64 `json:"draft_angle_deg,omitempty"`
	MaxOverhangDeg *float64 `json:"max_overhang_deg,omitempty"`
	HasUndercuts   bool     `json:"has_undercuts"`
	FacetCount     int      `json:"facet_count,omitempty"`
}

// WallThickness 平均壁厚：优先使用已有值，否则按 volume / 包围盒表面积 估算
func (g *GeometrySummary) WallThickness() float64 {
	if g.EstimatedWallThicknessMM > 0 {
		return g.EstimatedWallThicknessMM
	}
	area := g.BoundingBox.SurfaceArea()
	if g.VolumeMM3 <= 0 || area <= 0 {
		return 0
	}
	return g.VolumeMM3 / area
}

// ManufacturingRequest 制造需求
type ManufacturingRequest struct {
	Material         MaterialKind `json:"material"`
	Process          ProcessKind  `json:"process"`
	ProductionVolume int          `json:"production_volume"`
	UseAdvancedDFM   bool         `json:"use_advanced_dfm"`
}

func (r ManufacturingRequest) normalized() ManufacturingRequest {
	r.Process = ParseProcess(string(r.Process))
	r.Material = ParseMaterial(string(r.Material))
	if r.ProductionVolume < 1 {
		r.ProductionVolume = 1
	}
	return r
}

// Issue 单条 DFM 问题，创建后不再修改
type Issue struct {
	Rule           string   `json:"rule"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
	CostImpact     float64  `json:"cost_impact"`
}

// CostEstimate 成本估算（单件，含区间）
type CostEstimate struct {
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Currency       string  `json:"currency"`
	MaterialCost   float64 `json:"material_cost"`
	SetupCost      float64 `json:"setup_cost"`
	ProcessingCost float64 `json:"processing_cost"`
	IssuePenalty   float64 `json:"issue_penalty"`
	UnitCost       float64 `json:"unit_cost"`
	TotalCost      float64 `json:"total_cost"`
	Quantity       int     `json:"quantity"`
	Complexity     float64 `json:"complexity"`
}

// LeadTime 交期（天）
type LeadTime struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Typical int `json:"typical"`
}

// AnalysisResult 单次分析结果
type AnalysisResult struct {
	ManufacturabilityScore int          `json:"manufacturability_score"`
	OverallRating          Rating       `json:"overall_rating"`
	PrimaryProcess         ProcessKind  `json:"primary_process,omitempty"`
	Material               MaterialKind `json:"material,omitempty"`
	Issues                 []Issue      `json:"issues"`
	Recommendations        []string     `json:"recommendations"`
	CostEstimate           CostEstimate `json:"cost_estimate"`
	LeadTime               LeadTime     `json:"lead_time"`
	Source                 Source       `json:"source"`
	Degraded               bool         `json:"degraded,omitempty"`
}
