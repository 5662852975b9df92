package dfm

import (
	"fmt"
	"math"
)

const (
	aspectRatioMedium = 10.0
	aspectRatioHigh   = 20.0
	minFilletRadiusMM = 0.5
	minDraftAngleDeg  = 1.0
	maxHoleDepthRatio = 10.0
)

// rule 单条检测规则，按注册顺序执行
type rule struct {
	name     string
	advanced bool
	check    func(d *Detector, g *GeometrySummary, req ManufacturingRequest) []Issue
}

// baseRules 固定顺序：壁厚 → 薄壁 → 长宽比 → 孔 → 圆角 → 拔模 → 倒扣，其后为高级规则
var baseRules = []rule{
	{name: "Minimum Wall Thickness", check: checkWallThickness},
	{name: "Thin Wall", check: checkThinWalls},
	{name: "Aspect Ratio", check: checkAspectRatio},
	{name: "Small Hole", check: checkHoles},
	{name: "Fillet Radius", check: checkFillet},
	{name: "Draft Angle", check: checkDraft},
	{name: "Undercuts", check: checkUndercuts},
	{name: "Deep Hole", advanced: true, check: checkDeepHoles},
	{name: "Overhang", advanced: true, check: checkOverhang},
	{name: "Material Compatibility", advanced: true, check: checkMaterialCompatibility},
}

// incompatiblePairs 工艺与材料的不兼容组合
var incompatiblePairs = map[ProcessKind]map[MaterialKind]string{
	ProcessCNC: {
		MaterialTPU: "flexible material deflects under cutting forces",
		MaterialPLA: "low melting point causes gumming during machining",
	},
	ProcessFDM: {
		MaterialSteel:    "metals cannot be extruded by desktop FDM printers",
		MaterialAluminum: "metals cannot be extruded by desktop FDM printers",
	},
	ProcessInjectionMolding: {
		MaterialSteel: "steel requires metal injection molding tooling",
	},
}

// Detector 按工艺分派的 DFM 规则检测器
type Detector struct {
	cfg *Config
}

// NewDetector 创建检测器
func NewDetector(cfg *Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect 返回按规则顺序排列的问题列表，同一输入结果确定
func (d *Detector) Detect(g *GeometrySummary, req ManufacturingRequest) []Issue {
	issues := make([]Issue, 0)
	for _, r := range baseRules {
		if r.advanced && !req.UseAdvancedDFM {
			continue
		}
		for _, issue := range r.check(d, g, req) {
			issue.Rule = r.name
			issue.CostImpact = d.cfg.IssueCostImpact[issue.Severity]
			issues = append(issues, issue)
		}
	}
	return issues
}

// minWall 工艺与材料最小壁厚取较大者
func (d *Detector) minWall(req ManufacturingRequest) float64 {
	return math.Max(d.cfg.ruleSet(req.Process).MinWallMM, d.cfg.material(req.Material).MinWallMM)
}

func checkWallThickness(d *Detector, g *GeometrySummary, req ManufacturingRequest) []Issue {
	thickness := g.WallThickness()
	if thickness <= 0 {
		return nil
	}
	limit := d.minWall(req)
	if thickness >= limit {
		return nil
	}
	severity := SeverityMedium
	if thickness < limit/2 {
		severity = SeverityHigh
	}
	return []Issue{{
		Severity:       severity,
		Message:        fmt.Sprintf("Wall thickness (%.2f mm) is below minimum recommended (%.1f mm)", thickness, limit),
		Recommendation: fmt.Sprintf("Increase wall thickness to at least %.1f mm for %s", limit, req.Process),
	}}
}

func checkThinWalls(d *Detector, g *GeometrySummary, req ManufacturingRequest) []Issue {
	limit := d.cfg.ruleSet(req.Process).ThinWallMM
	if limit <= 0 {
		return nil
	}
	var issues []Issue
	for _, w := range g.ThinWalls {
		if w.ThicknessMM >= limit {
			continue
		}
		severity := SeverityMedium
		if w.ThicknessMM < limit/2 {
			severity = SeverityHigh
		}
		issues = append(issues, Issue{
			Severity:       severity,
			Message:        fmt.Sprintf("Thin wall detected (%.2f mm) below minimum printable thickness (%.1f mm)", w.ThicknessMM, limit),
			Recommendation: fmt.Sprintf("Increase wall thickness to at least %.1f mm for %s", limit, req.Process),
		})
	}
	return issues
}

func checkAspectRatio(_ *Detector, g *GeometrySummary, _ ManufacturingRequest) []Issue {
	if !g.BoundingBox.Complete() {
		return []Issue{{
			Severity:       SeverityLow,
			Message:        "Incomplete bounding box: one or more dimensions are missing or zero",
			Recommendation: "Provide complete bounding box dimensions for a full analysis",
		}}
	}
	dims := g.BoundingBox.Sorted()
	ratio := dims[2] / dims[0]
	if ratio <= aspectRatioMedium {
		return nil
	}
	severity := SeverityMedium
	if ratio > aspectRatioHigh {
		severity = SeverityHigh
	}
	return []Issue{{
		Severity:       severity,
		Message:        fmt.Sprintf("High aspect ratio (%.2f) exceeds recommended maximum (%.0f)", ratio, aspectRatioMedium),
		Recommendation: "Consider redesigning to reduce the aspect ratio or adding support structures",
	}}
}

func checkHoles(d *Detector, g *GeometrySummary, req ManufacturingRequest) []Issue {
	limit := d.cfg.ruleSet(req.Process).MinHoleMM
	if limit <= 0 {
		return nil
	}
	var issues []Issue
	for _, h := range g.Holes {
		if h.DiameterMM >= limit {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Message:        fmt.Sprintf("Small hole detected (%.2f mm) which may be difficult to produce accurately", h.DiameterMM),
			Recommendation: fmt.Sprintf("Increase hole diameter to at least %.1f mm or drill after printing", limit),
		})
	}
	return issues
}

func checkFillet(_ *Detector, g *GeometrySummary, _ ManufacturingRequest) []Issue {
	if g.FilletRadiusMM == nil || *g.FilletRadiusMM >= minFilletRadiusMM {
		return nil
	}
	return []Issue{{
		Severity:       SeverityWarning,
		Message:        fmt.Sprintf("Fillet radius (%.2f mm) is below recommended minimum (%.1f mm)", *g.FilletRadiusMM, minFilletRadiusMM),
		Recommendation: fmt.Sprintf("Increase fillet radius to at least %.1f mm to reduce stress concentration", minFilletRadiusMM),
	}}
}

func checkDraft(_ *Detector, g *GeometrySummary, _ ManufacturingRequest) []Issue {
	if g.DraftAngleDeg == nil || *g.DraftAngleDeg >= minDraftAngleDeg {
		return nil
	}
	return []Issue{{
		Severity:       SeverityWarning,
		Message:        fmt.Sprintf("Draft angle (%.2f deg) is below recommended minimum (%.1f deg)", *g.DraftAngleDeg, minDraftAngleDeg),
		Recommendation: "Add at least 1 degree of draft to faces parallel to the pull direction",
	}}
}

func checkUndercuts(_ *Detector, g *GeometrySummary, _ ManufacturingRequest) []Issue {
	if !g.HasUndercuts {
		return nil
	}
	return []Issue{{
		Severity:       SeverityWarning,
		Message:        "Undercuts detected which complicate tooling and part removal",
		Recommendation: "Remove undercuts or plan for side actions in the tooling",
	}}
}

func checkDeepHoles(_ *Detector, g *GeometrySummary, _ ManufacturingRequest) []Issue {
	var issues []Issue
	for _, h := range g.Holes {
		if h.DiameterMM <= 0 || h.DepthMM/h.DiameterMM <= maxHoleDepthRatio {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Message:        fmt.Sprintf("Hole depth-to-diameter ratio (%.2f) exceeds recommended maximum (%.0f)", h.DepthMM/h.DiameterMM, maxHoleDepthRatio),
			Recommendation: "Reduce hole depth or increase its diameter",
		})
	}
	return issues
}

func checkOverhang(d *Detector, g *GeometrySummary, req ManufacturingRequest) []Issue {
	limit := d.cfg.ruleSet(req.Process).MaxOverhangDeg
	if limit <= 0 || g.MaxOverhangDeg == nil || *g.MaxOverhangDeg <= limit {
		return nil
	}
	return []Issue{{
		Severity:       SeverityWarning,
		Message:        fmt.Sprintf("Overhang of %.1f deg exceeds the %.0f deg self-supporting limit", *g.MaxOverhangDeg, limit),
		Recommendation: "Add support structures or reorient the part on the build plate",
	}}
}

func checkMaterialCompatibility(_ *Detector, _ *GeometrySummary, req ManufacturingRequest) []Issue {
	reason, ok := incompatiblePairs[req.Process][req.Material]
	if !ok {
		return nil
	}
	return []Issue{{
		Severity:       SeverityHigh,
		Message:        fmt.Sprintf("%s is not suitable for %s: %s", req.Material, req.Process, reason),
		Recommendation: fmt.Sprintf("Choose a material compatible with %s or switch process", req.Process),
	}}
}
