package dfm

import "fmt"

// NoIssuesRecommendation 无问题时的唯一建议
const NoIssuesRecommendation = "Design is manufacturable with the selected process."

// alternateScoreThreshold 低于该分数时追加替代工艺建议
const alternateScoreThreshold = 60

// Recommender 建议生成器
type Recommender struct {
	cfg *Config
}

// NewRecommender 创建建议生成器
func NewRecommender(cfg *Config) *Recommender {
	return &Recommender{cfg: cfg}
}

// Recommend 按首次出现顺序去重问题建议，低分时追加一条替代工艺
func (r *Recommender) Recommend(issues []Issue, score int, process ProcessKind) []string {
	if len(issues) == 0 {
		return []string{NoIssuesRecommendation}
	}

	seen := make(map[string]struct{}, len(issues))
	recs := make([]string, 0, len(issues)+1)
	for _, issue := range issues {
		if issue.Recommendation == "" {
			continue
		}
		if _, ok := seen[issue.Recommendation]; ok {
			continue
		}
		seen[issue.Recommendation] = struct{}{}
		recs = append(recs, issue.Recommendation)
	}

	if score < alternateScoreThreshold {
		if alt, ok := r.cfg.Alternates[process]; ok {
			recs = append(recs, fmt.Sprintf("Consider %s as an alternative process for %s", alt.Process, alt.Reason))
		}
	}
	return recs
}
