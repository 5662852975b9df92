package dfm

// EstimateLeadTime 交期 = 工艺基础天数 + 生产天数
func EstimateLeadTime(process ProcessKind, quantity int) LeadTime {
	base := 5
	switch process {
	case ProcessInjectionMolding:
		base = 30
	case ProcessCNC:
		base = 10
	}

	var production int
	switch {
	case quantity <= 10:
		production = 1
	case quantity <= 100:
		production = 3
	case quantity <= 1000:
		production = 7
	default:
		production = 14
	}

	typical := base + production
	low := typical - 2
	if low < 1 {
		low = 1
	}
	return LeadTime{Min: low, Max: typical + 3, Typical: typical}
}
