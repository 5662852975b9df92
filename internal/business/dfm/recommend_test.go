package dfm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestRecommender() *Recommender {
	cfg := DefaultConfig()
	return NewRecommender(&cfg)
}

func TestRecommendNoIssues(t *testing.T) {
	got := newTestRecommender().Recommend(nil, 90, ProcessFDM)

	if diff := cmp.Diff([]string{NoIssuesRecommendation}, got); diff != "" {
		t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendDedupesInFirstSeenOrder(t *testing.T) {
	issues := []Issue{
		{Recommendation: "b"},
		{Recommendation: "a"},
		{Recommendation: "b"},
		{Recommendation: ""},
		{Recommendation: "c"},
	}

	got := newTestRecommender().Recommend(issues, 80, ProcessFDM)

	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendAlternateProcessOnLowScore(t *testing.T) {
	issues := []Issue{{Recommendation: "fix it"}}

	got := newTestRecommender().Recommend(issues, 40, ProcessInjectionMolding)

	if len(got) != 2 {
		t.Fatalf("Recommend() = %v, want 2 entries", got)
	}
	if !strings.Contains(got[1], string(ProcessCNC)) {
		t.Errorf("alternate = %q, want mention of %s", got[1], ProcessCNC)
	}

	if got := newTestRecommender().Recommend(issues, 60, ProcessInjectionMolding); len(got) != 1 {
		t.Errorf("Recommend() at threshold = %v, want no alternate", got)
	}
}
