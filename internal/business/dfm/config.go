package dfm

import "maps"

// MaterialRate 材料费率
type MaterialRate struct {
	CostPerKg   float64
	DensityGCM3 float64
	MinWallMM   float64
}

// ProcessRate 工艺费率
type ProcessRate struct {
	SetupCost   float64
	PerPartCost float64
	HourlyRate  float64
}

// RuleSet 单个工艺的规则阈值，0 表示该规则对此工艺关闭
type RuleSet struct {
	MinWallMM      float64
	ThinWallMM     float64
	MinHoleMM      float64
	MaxOverhangDeg float64
}

// Alternate 低分时推荐的替代工艺
type Alternate struct {
	Process ProcessKind
	Reason  string
}

// Config 引擎配置，构造后只读
type Config struct {
	Currency        string
	Materials       map[MaterialKind]MaterialRate
	GenericMaterial MaterialRate
	Processes       map[ProcessKind]ProcessRate
	RuleSets        map[ProcessKind]RuleSet
	IssueCostImpact map[Severity]float64
	Alternates      map[ProcessKind]Alternate
}

// DefaultCurrency 默认币种
const DefaultCurrency = "INR"

// DefaultConfig 默认配置（INR 费率）
func DefaultConfig() Config {
	return Config{
		Currency: DefaultCurrency,
		Materials: map[MaterialKind]MaterialRate{
			MaterialPLA:            {CostPerKg: 80, DensityGCM3: 1.24, MinWallMM: 1.0},
			MaterialABS:            {CostPerKg: 120, DensityGCM3: 1.05, MinWallMM: 1.2},
			MaterialPETG:           {CostPerKg: 140, DensityGCM3: 1.27, MinWallMM: 1.0},
			MaterialNylon:          {CostPerKg: 450, DensityGCM3: 1.14, MinWallMM: 1.5},
			MaterialTPU:            {CostPerKg: 400, DensityGCM3: 1.21, MinWallMM: 1.5},
			MaterialAluminum:       {CostPerKg: 250, DensityGCM3: 2.70, MinWallMM: 0.8},
			MaterialSteel:          {CostPerKg: 180, DensityGCM3: 7.85, MinWallMM: 0.5},
			MaterialStainlessSteel: {CostPerKg: 350, DensityGCM3: 8.00, MinWallMM: 0.5},
		},
		GenericMaterial: MaterialRate{CostPerKg: 150, DensityGCM3: 1.2},
		Processes: map[ProcessKind]ProcessRate{
			ProcessFDM:              {SetupCost: 0, PerPartCost: 25, HourlyRate: 150},
			ProcessSLA:              {SetupCost: 500, PerPartCost: 40, HourlyRate: 250},
			ProcessSLS:              {SetupCost: 1000, PerPartCost: 60, HourlyRate: 350},
			ProcessCNC:              {SetupCost: 2500, PerPartCost: 45, HourlyRate: 900},
			ProcessInjectionMolding: {SetupCost: 15000, PerPartCost: 8, HourlyRate: 1200},
			ProcessGeneric:          {SetupCost: 1000, PerPartCost: 20, HourlyRate: 300},
		},
		RuleSets: map[ProcessKind]RuleSet{
			ProcessFDM:              {MinWallMM: 0.8, ThinWallMM: 0.8, MinHoleMM: 2.0, MaxOverhangDeg: 45},
			ProcessSLA:              {MinWallMM: 1.0},
			ProcessSLS:              {MinWallMM: 1.0},
			ProcessCNC:              {MinWallMM: 1.0},
			ProcessInjectionMolding: {MinWallMM: 1.2},
			ProcessGeneric:          {MinWallMM: 1.0},
		},
		IssueCostImpact: map[Severity]float64{
			SeverityCritical: 800,
			SeverityHigh:     500,
			SeverityMedium:   200,
			SeverityLow:      100,
			SeverityWarning:  100,
		},
		Alternates: map[ProcessKind]Alternate{
			ProcessFDM:              {Process: ProcessSLA, Reason: "finer features and thinner walls"},
			ProcessSLA:              {Process: ProcessSLS, Reason: "support-free printing of complex geometry"},
			ProcessSLS:              {Process: ProcessCNC, Reason: "tighter tolerances on functional parts"},
			ProcessCNC:              {Process: ProcessSLS, Reason: "internal features that cannot be machined"},
			ProcessInjectionMolding: {Process: ProcessCNC, Reason: "no tooling cost at low volumes"},
			ProcessGeneric:          {Process: ProcessCNC, Reason: "a well characterised general purpose process"},
		},
	}
}

// withDefaults 用默认值补全缺失项
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Currency == "" {
		c.Currency = d.Currency
	}
	if c.GenericMaterial.CostPerKg <= 0 || c.GenericMaterial.DensityGCM3 <= 0 {
		c.GenericMaterial = d.GenericMaterial
	}
	c.Materials = mergeMaterials(d.Materials, c.Materials)
	c.Processes = mergeProcesses(d.Processes, c.Processes)
	c.RuleSets = cloneOr(c.RuleSets, d.RuleSets)
	c.IssueCostImpact = cloneOr(c.IssueCostImpact, d.IssueCostImpact)
	c.Alternates = cloneOr(c.Alternates, d.Alternates)
	return c
}

// cloneOr 调用方给出的表整体替换默认表；返回副本，不与调用方共享
func cloneOr[K comparable, V any](m, fallback map[K]V) map[K]V {
	if len(m) == 0 {
		return maps.Clone(fallback)
	}
	return maps.Clone(m)
}

func mergeMaterials(base, override map[MaterialKind]MaterialRate) map[MaterialKind]MaterialRate {
	out := make(map[MaterialKind]MaterialRate, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[ParseMaterial(string(k))] = v
	}
	return out
}

func mergeProcesses(base, override map[ProcessKind]ProcessRate) map[ProcessKind]ProcessRate {
	out := make(map[ProcessKind]ProcessRate, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[ParseProcess(string(k))] = v
	}
	return out
}

// material 查询材料费率，未知材料返回通用费率
func (c *Config) material(m MaterialKind) MaterialRate {
	if r, ok := c.Materials[m]; ok {
		return r
	}
	return c.GenericMaterial
}

func (c *Config) process(p ProcessKind) ProcessRate {
	if r, ok := c.Processes[p]; ok {
		return r
	}
	return c.Processes[ProcessGeneric]
}

func (c *Config) ruleSet(p ProcessKind) RuleSet {
	if r, ok := c.RuleSets[p]; ok {
		return r
	}
	return c.RuleSets[ProcessGeneric]
}
