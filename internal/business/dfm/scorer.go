package dfm

import (
	"fmt"
	"math"
)

// BaseScore 无问题时的基础分
const BaseScore = 90

const (
	largePrintVolumeMM3 = 1_000_000.0
	largePrintDeduction = 5
	defaultDeduction    = 10
)

// severityDeductions 各严重程度扣分
var severityDeductions = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     20,
	SeverityMedium:   10,
	SeverityLow:      5,
	SeverityWarning:  5,
}

// Score 计算可制造性得分与评级，结果落在 [0,100]
func Score(issues []Issue, process ProcessKind, g *GeometrySummary) (int, Rating, error) {
	if math.IsNaN(g.VolumeMM3) || math.IsInf(g.VolumeMM3, 0) {
		return 0, RatingLow, &InternalScoringError{Stage: "score", Err: fmt.Errorf("volume is not finite: %v", g.VolumeMM3)}
	}

	score := BaseScore
	for _, issue := range issues {
		deduction, ok := severityDeductions[issue.Severity]
		if !ok {
			deduction = defaultDeduction
		}
		score -= deduction
	}
	if process == ProcessFDM && g.VolumeMM3 > largePrintVolumeMM3 {
		score -= largePrintDeduction
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, RatingFor(score), nil
}

// RatingFor 得分 → 评级
func RatingFor(score int) Rating {
	switch {
	case score >= 90:
		return RatingHigh
	case score >= 70:
		return RatingMedium
	default:
		return RatingLow
	}
}
