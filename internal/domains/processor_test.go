package domains

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bitleak/lmstfy/client"

	"mfgcopilot/common/model"
	"mfgcopilot/internal/business/analysis"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/lmstfyx"
	"mfgcopilot/pkg/logger"
)

// MockStore for testing
type MockStore struct {
	SaveErr error
	Saved   int
}

func (m *MockStore) SaveResult(ctx context.Context, analysisID string, result *dfm.AnalysisResult) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved++
	return nil
}

func (m *MockStore) MarkFailed(ctx context.Context, analysisID string, errorMsg string) error {
	return nil
}

func newTestDeps(store *MockStore) *Dependencies {
	log := logger.NewNopLogger()
	return &Dependencies{
		Analyzer: fallback.NewOrchestrator(dfm.NewEngine(dfm.DefaultConfig()), nil, fallback.Config{}, log),
		Reporter: analysis.NewReporter(store, nil, log),
		Logger:   log,
	}
}

func analyzeJob(t *testing.T, cad string) *client.Job {
	t.Helper()
	data, err := json.Marshal(model.NewAnalysisJob("req-9", "an-9", model.AnalyzeRequest{
		CADData: json.RawMessage(cad),
	}))
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return &client.Job{ID: "job-9", Queue: "dfm_analysis", Data: data}
}

func TestGetProcessActions(t *testing.T) {
	tests := []struct {
		name    string
		job     func(t *testing.T) *client.Job
		saveErr error
		want    lmstfyx.JobRespStatus
	}{
		{
			name: "success",
			job:  func(t *testing.T) *client.Job { return analyzeJob(t, `{"volume":1000,"bounding_box":[10,10,10]}`) },
			want: lmstfyx.JobRespStatusSuccess,
		},
		{
			name:    "database down is released",
			job:     func(t *testing.T) *client.Job { return analyzeJob(t, `{"volume":1000,"bounding_box":[10,10,10]}`) },
			saveErr: errors.New("connection refused"),
			want:    lmstfyx.JobRespStatusRelease,
		},
		{
			name: "malformed geometry is buried",
			job:  func(t *testing.T) *client.Job { return analyzeJob(t, `[1,2,3]`) },
			want: lmstfyx.JobRespStatusBury,
		},
		{
			name: "invalid json is buried",
			job:  func(t *testing.T) *client.Job { return &client.Job{ID: "job-x", Data: []byte("{")} },
			want: lmstfyx.JobRespStatusBury,
		},
		{
			name: "unknown action is buried",
			job: func(t *testing.T) *client.Job {
				return &client.Job{ID: "job-y", Data: []byte(`{"payload":{"data":{"action_type":"order_diagnose","id":"1"}}}`)}
			},
			want: lmstfyx.JobRespStatusBury,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			proc := GetProcess(newTestDeps(&MockStore{SaveErr: tt.saveErr}))

			// Act
			resp := proc(context.Background(), tt.job(t))

			// Assert
			if resp.Action != tt.want {
				t.Errorf("Action = %s, want %s", resp.Action, tt.want)
			}
		})
	}
}

func TestGetProcessRecoversHandlerPanic(t *testing.T) {
	// Arrange
	const action = "panicking_action"
	HandlerMap[action] = func(ctx context.Context, base *framework.BaseHandler, deps *Dependencies) (framework.BusinessHandler, error) {
		panic("boom")
	}
	defer delete(HandlerMap, action)

	job := &client.Job{ID: "job-z", Data: []byte(`{"payload":{"data":{"action_type":"panicking_action","id":"1"}}}`)}

	// Act
	resp := GetProcess(newTestDeps(&MockStore{}))(context.Background(), job)

	// Assert
	if resp.Action != lmstfyx.JobRespStatusBury {
		t.Errorf("Action = %s, want bury", resp.Action)
	}
}
