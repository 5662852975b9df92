package dfm

import "testing"

func newTestDetector() *Detector {
	cfg := DefaultConfig()
	return NewDetector(&cfg)
}

func fdmPLA() ManufacturingRequest {
	return ManufacturingRequest{Material: MaterialPLA, Process: ProcessFDM, ProductionVolume: 1}
}

func ptr(f float64) *float64 { return &f }

func TestDetectThinEstimatedWall(t *testing.T) {
	g := &GeometrySummary{
		VolumeMM3:   18871.73,
		BoundingBox: BoundingBox{Length: 64, Width: 150.13, Height: 8},
	}

	issues := newTestDetector().Detect(g, fdmPLA())

	if len(issues) != 2 {
		t.Fatalf("Detect() returned %d issues, want 2: %+v", len(issues), issues)
	}
	// 壁厚约 0.83mm，PLA 最小 1.0mm
	if issues[0].Rule != "Minimum Wall Thickness" || issues[0].Severity != SeverityMedium {
		t.Errorf("issues[0] = %+v, want medium wall thickness", issues[0])
	}
	if issues[1].Rule != "Aspect Ratio" || issues[1].Severity != SeverityMedium {
		t.Errorf("issues[1] = %+v, want medium aspect ratio", issues[1])
	}
	if issues[0].CostImpact != 200 {
		t.Errorf("CostImpact = %v, want 200", issues[0].CostImpact)
	}
}

func TestDetectWallSeverityHighBelowHalfMinimum(t *testing.T) {
	g := &GeometrySummary{
		EstimatedWallThicknessMM: 0.4,
		BoundingBox:              BoundingBox{Length: 50, Width: 50, Height: 50},
	}

	issues := newTestDetector().Detect(g, fdmPLA())

	if len(issues) != 1 || issues[0].Severity != SeverityHigh {
		t.Errorf("Detect() = %+v, want one high issue", issues)
	}
}

func TestDetectWallSkippedWhenVolumeUnknown(t *testing.T) {
	g := &GeometrySummary{BoundingBox: BoundingBox{Length: 100, Width: 80, Height: 60}}

	if issues := newTestDetector().Detect(g, fdmPLA()); len(issues) != 0 {
		t.Errorf("Detect() = %+v, want none", issues)
	}
}

func TestDetectThinWallSeverity(t *testing.T) {
	tests := []struct {
		name      string
		thickness float64
		want      Severity
	}{
		{"below half of FDM minimum", 0.3, SeverityHigh},
		{"exactly half of FDM minimum", 0.4, SeverityMedium},
		{"between half and minimum", 0.65, SeverityMedium},
		{"at minimum", 0.8, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &GeometrySummary{
				BoundingBox: BoundingBox{Length: 100, Width: 80, Height: 60},
				ThinWalls:   []ThinWall{{ThicknessMM: tt.thickness}},
			}

			issues := newTestDetector().Detect(g, fdmPLA())

			if tt.want == "" {
				if len(issues) != 0 {
					t.Errorf("Detect() = %+v, want none", issues)
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("Detect() returned %d issues, want 1", len(issues))
			}
			if issues[0].Rule != "Thin Wall" || issues[0].Severity != tt.want {
				t.Errorf("issue = %+v, want %s thin wall", issues[0], tt.want)
			}
		})
	}
}

func TestDetectThinWallsScoreIndependently(t *testing.T) {
	g := &GeometrySummary{
		BoundingBox: BoundingBox{Length: 100, Width: 80, Height: 60},
		ThinWalls:   []ThinWall{{ThicknessMM: 0.3}, {ThicknessMM: 0.4}},
	}

	issues := newTestDetector().Detect(g, fdmPLA())
	score, rating, err := Score(issues, ProcessFDM, g)

	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// 90 - 20 (high) - 10 (medium)
	if score != 60 || rating != RatingLow {
		t.Errorf("Score() = %d/%s, want 60/LOW", score, rating)
	}
}

func TestDetectThinWallOnlyForFDM(t *testing.T) {
	g := &GeometrySummary{
		BoundingBox: BoundingBox{Length: 100, Width: 80, Height: 60},
		ThinWalls:   []ThinWall{{ThicknessMM: 0.3}},
		Holes:       []Hole{{DiameterMM: 1}},
	}
	req := ManufacturingRequest{Material: MaterialAluminum, Process: ProcessCNC, ProductionVolume: 1}

	if issues := newTestDetector().Detect(g, req); len(issues) != 0 {
		t.Errorf("Detect() = %+v, want none for CNC", issues)
	}
}

func TestDetectAspectRatio(t *testing.T) {
	tests := []struct {
		name string
		bbox BoundingBox
		want Severity
	}{
		{"ratio 40 is high", BoundingBox{Length: 200, Width: 10, Height: 5}, SeverityHigh},
		{"ratio 15 is medium", BoundingBox{Length: 150, Width: 20, Height: 10}, SeverityMedium},
		{"missing height is low", BoundingBox{Length: 150, Width: 20}, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := newTestDetector().Detect(&GeometrySummary{BoundingBox: tt.bbox}, fdmPLA())
			if len(issues) != 1 || issues[0].Severity != tt.want {
				t.Errorf("Detect() = %+v, want one %s issue", issues, tt.want)
			}
		})
	}
}

func TestDetectFeatureWarnings(t *testing.T) {
	g := &GeometrySummary{
		BoundingBox:    BoundingBox{Length: 100, Width: 80, Height: 60},
		Holes:          []Hole{{DiameterMM: 1.2}},
		FilletRadiusMM: ptr(0.2),
		DraftAngleDeg:  ptr(0.5),
		HasUndercuts:   true,
	}

	issues := newTestDetector().Detect(g, fdmPLA())

	want := []string{"Small Hole", "Fillet Radius", "Draft Angle", "Undercuts"}
	if len(issues) != len(want) {
		t.Fatalf("Detect() returned %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, rule := range want {
		if issues[i].Rule != rule {
			t.Errorf("issues[%d].Rule = %q, want %q", i, issues[i].Rule, rule)
		}
	}
}

func TestDetectAdvancedRulesRequireFlag(t *testing.T) {
	g := &GeometrySummary{
		BoundingBox:    BoundingBox{Length: 100, Width: 80, Height: 60},
		Holes:          []Hole{{DiameterMM: 3, DepthMM: 45}},
		MaxOverhangDeg: ptr(60),
	}
	req := ManufacturingRequest{Material: MaterialSteel, Process: ProcessFDM, ProductionVolume: 1}

	if issues := newTestDetector().Detect(g, req); len(issues) != 0 {
		t.Errorf("Detect() without advanced = %+v, want none", issues)
	}

	req.UseAdvancedDFM = true
	issues := newTestDetector().Detect(g, req)
	want := []string{"Deep Hole", "Overhang", "Material Compatibility"}
	if len(issues) != len(want) {
		t.Fatalf("Detect() returned %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, rule := range want {
		if issues[i].Rule != rule {
			t.Errorf("issues[%d].Rule = %q, want %q", i, issues[i].Rule, rule)
		}
	}
}

func TestParseProcessAliases(t *testing.T) {
	tests := map[string]ProcessKind{
		"":                  ProcessFDM,
		"fdm":               ProcessFDM,
		"3d printing":       ProcessFDM,
		"cnc-milling":       ProcessCNC,
		"injection_molding": ProcessInjectionMolding,
		"sla":               ProcessSLA,
		"laser cutting":     ProcessGeneric,
	}
	for in, want := range tests {
		if got := ParseProcess(in); got != want {
			t.Errorf("ParseProcess(%q) = %s, want %s", in, got, want)
		}
	}
}
