package dfm

import (
	"encoding/json"
	"math"

	"github.com/spf13/cast"
)

// 各字段可接受的键名，按优先级排列
var (
	volumeKeys      = []string{"volume_mm3", "volume", "total_volume"}
	surfaceKeys     = []string{"surface_area_mm2", "surface_area", "total_surface_area"}
	bboxKeys        = []string{"bounding_box", "bbox", "bounding_box_mm"}
	wallKeys        = []string{"estimated_wall_thickness_mm", "wall_thickness_mm", "wall_thickness", "min_wall_thickness"}
	filletKeys      = []string{"fillet_radius_mm", "fillet_radius", "min_fillet_radius"}
	draftKeys       = []string{"draft_angle_deg", "draft_angle", "min_draft_angle"}
	overhangKeys    = []string{"max_overhang_deg", "max_overhang_angle", "overhang_angle"}
	undercutKeys    = []string{"has_undercuts", "undercuts"}
	facetKeys       = []string{"facet_count", "facets", "triangle_count"}
	holeKeys        = []string{"holes"}
	thinWallKeys    = []string{"thin_walls"}
	holeDiameterKey = []string{"diameter_mm", "diameter"}
	holeDepthKey    = []string{"depth_mm", "depth"}
	wallThickKey    = []string{"thickness_mm", "thickness"}
	wallAreaKey     = []string{"area_mm2", "area"}
)

// Normalize 将任意形态的 CAD 数据转换为 GeometrySummary
// 接受 map、JSON 字节或已归一化的结构；非键值结构返回 MalformedGeometryError，缺失字段按 0 处理
func Normalize(raw any) (*GeometrySummary, error) {
	switch v := raw.(type) {
	case *GeometrySummary:
		if v == nil {
			return nil, &MalformedGeometryError{Reason: "cad data is nil"}
		}
		g := *v
		g.EstimatedWallThicknessMM = g.WallThickness()
		return &g, nil
	case GeometrySummary:
		v.EstimatedWallThicknessMM = v.WallThickness()
		return &v, nil
	}

	m, err := toMapping(raw)
	if err != nil {
		return nil, err
	}

	dims, _ := cast.ToStringMapE(pick(m, "dimensions"))
	features, _ := cast.ToStringMapE(pick(m, "features"))

	g := &GeometrySummary{
		VolumeMM3:      nonNegative(pickNested(m, dims, volumeKeys...)),
		SurfaceAreaMM2: nonNegative(pickNested(m, dims, surfaceKeys...)),
		BoundingBox:    parseBoundingBox(pickNested(m, dims, bboxKeys...)),
		Holes:          parseHoles(pickNested(m, features, holeKeys...)),
		ThinWalls:      parseThinWalls(pickNested(m, features, thinWallKeys...)),
		FilletRadiusMM: optionalNumber(pickNested(m, features, filletKeys...)),
		DraftAngleDeg:  optionalNumber(pickNested(m, features, draftKeys...)),
		MaxOverhangDeg: optionalNumber(pickNested(m, features, overhangKeys...)),
		HasUndercuts:   parseUndercuts(pickNested(m, features, undercutKeys...)),
		FacetCount:     int(nonNegative(pickNested(m, dims, facetKeys...))),
	}
	g.EstimatedWallThicknessMM = nonNegative(pickNested(m, features, wallKeys...))
	g.EstimatedWallThicknessMM = g.WallThickness()
	return g, nil
}

func toMapping(raw any) (map[string]any, error) {
	if raw == nil {
		return nil, &MalformedGeometryError{Reason: "cad data is missing"}
	}
	switch v := raw.(type) {
	case json.RawMessage:
		return decodeMapping(v)
	case []byte:
		return decodeMapping(v)
	case string:
		return decodeMapping([]byte(v))
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, &MalformedGeometryError{Reason: "cad data must be a mapping", Err: err}
	}
	return m, nil
}

func decodeMapping(b []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, &MalformedGeometryError{Reason: "cad data is not valid json", Err: err}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedGeometryError{Reason: "cad data must be a mapping"}
	}
	return m, nil
}

// pick 返回第一个存在且非 nil 的键值
func pick(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// pickNested 先查顶层，再查嵌套段
func pickNested(top, nested map[string]any, keys ...string) any {
	if v := pick(top, keys...); v != nil {
		return v
	}
	if nested == nil {
		return nil
	}
	return pick(nested, keys...)
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func nonNegative(v any) float64 {
	f, ok := number(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func optionalNumber(v any) *float64 {
	f, ok := number(v)
	if !ok {
		return nil
	}
	if f < 0 {
		f = 0
	}
	return &f
}

// parseBoundingBox 支持 {length,width,height}、{x_length,...}、{x,y,z}、{min,max} 与 [l,w,h] 五种形态
func parseBoundingBox(v any) BoundingBox {
	if v == nil {
		return BoundingBox{}
	}
	if list, err := cast.ToSliceE(v); err == nil {
		var dims [3]float64
		for i := 0; i < len(list) && i < 3; i++ {
			dims[i] = nonNegative(list[i])
		}
		return BoundingBox{Length: dims[0], Width: dims[1], Height: dims[2]}
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return BoundingBox{}
	}

	if lo, hi := pick(m, "min"), pick(m, "max"); lo != nil && hi != nil {
		a := point(lo)
		b := point(hi)
		return BoundingBox{
			Length: math.Abs(b[0] - a[0]),
			Width:  math.Abs(b[1] - a[1]),
			Height: math.Abs(b[2] - a[2]),
		}
	}

	return BoundingBox{
		Length: nonNegative(pick(m, "length", "x_length", "length_mm", "x")),
		Width:  nonNegative(pick(m, "width", "y_length", "width_mm", "y")),
		Height: nonNegative(pick(m, "height", "z_length", "height_mm", "z")),
	}
}

func point(v any) [3]float64 {
	var p [3]float64
	if list, err := cast.ToSliceE(v); err == nil {
		for i := 0; i < len(list) && i < 3; i++ {
			p[i], _ = number(list[i])
		}
		return p
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return p
	}
	p[0], _ = number(pick(m, "x"))
	p[1], _ = number(pick(m, "y"))
	p[2], _ = number(pick(m, "z"))
	return p
}

// parseHoles 非正直径的孔被丢弃；元素可为数字（直径）或对象
func parseHoles(v any) []Hole {
	list, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	holes := make([]Hole, 0, len(list))
	for _, item := range list {
		var h Hole
		if m, err := cast.ToStringMapE(item); err == nil {
			h.DiameterMM = nonNegative(pick(m, holeDiameterKey...))
			if h.DiameterMM == 0 {
				h.DiameterMM = 2 * nonNegative(pick(m, "radius_mm", "radius"))
			}
			h.DepthMM = nonNegative(pick(m, holeDepthKey...))
		} else {
			h.DiameterMM = nonNegative(item)
		}
		if h.DiameterMM > 0 {
			holes = append(holes, h)
		}
	}
	return holes
}

func parseThinWalls(v any) []ThinWall {
	list, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	walls := make([]ThinWall, 0, len(list))
	for _, item := range list {
		var w ThinWall
		if m, err := cast.ToStringMapE(item); err == nil {
			w.ThicknessMM = nonNegative(pick(m, wallThickKey...))
			w.AreaMM2 = nonNegative(pick(m, wallAreaKey...))
		} else {
			w.ThicknessMM = nonNegative(item)
		}
		if w.ThicknessMM > 0 {
			walls = append(walls, w)
		}
	}
	return walls
}

// parseUndercuts 布尔、计数或列表均可
func parseUndercuts(v any) bool {
	switch u := v.(type) {
	case nil:
		return false
	case bool:
		return u
	case []any:
		return len(u) > 0
	}
	if f, ok := number(v); ok {
		return f > 0
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}
