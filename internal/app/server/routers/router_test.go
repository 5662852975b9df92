package routers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/domains/entity/etanalysis"
	"mfgcopilot/internal/app/domains/modules/mdjob"
	"mfgcopilot/internal/app/domains/repo/rpanalysis"
	"mfgcopilot/internal/app/domains/services/svanalysis"
	"mfgcopilot/internal/app/pkg/ginx"
	"mfgcopilot/internal/app/server/handlers/analysis"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/pkg/logger"
)

// MockStore for testing
type MockStore struct {
	records map[string]*etanalysis.Analysis
}

func (m *MockStore) Create(ctx context.Context, a *etanalysis.Analysis) error {
	m.records[a.ID] = a
	return nil
}

func (m *MockStore) MarkFailed(ctx context.Context, a *etanalysis.Analysis, msg string) error {
	a.MarkAsFailed(msg)
	return nil
}

func (m *MockStore) GetByID(ctx context.Context, id string) (*etanalysis.Analysis, error) {
	a, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rpanalysis.ErrNotFound, id)
	}
	return a, nil
}

// MockDispatcher for testing
type MockDispatcher struct {
	Dispatched int
}

func (m *MockDispatcher) Dispatch(ctx context.Context, a *etanalysis.Analysis) error {
	m.Dispatched++
	return nil
}

func (m *MockDispatcher) Watch(ctx context.Context, id string) (mdjob.ResultWatch, error) {
	return nil, fmt.Errorf("redis not available in tests")
}

type testServer struct {
	engine     *gin.Engine
	store      *MockStore
	dispatcher *MockDispatcher
}

func newTestServer(apiKeys []string) *testServer {
	return newTestServerWith(Options{APIKeys: apiKeys})
}

func newTestServerWith(opts Options) *testServer {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	store := &MockStore{records: map[string]*etanalysis.Analysis{}}
	dispatcher := &MockDispatcher{}
	orchestrator := fallback.NewOrchestrator(dfm.NewEngine(dfm.DefaultConfig()), nil, fallback.Config{}, log)
	svc := svanalysis.NewAnalysisService(store, dispatcher, orchestrator, 30, log)
	opts.ServiceName = "mfg-copilot-api"
	opts.Logger = log
	engine := SetupRoutes(analysis.NewAnalysisHandler(svc, log), opts)
	return &testServer{engine: engine, store: store, dispatcher: dispatcher}
}

func (s *testServer) do(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

const analyzeBody = `{
  "cad_data": {"volume": 18871.73, "bounding_box": {"length": 64, "width": 150.13, "height": 8}},
  "material": "PLA",
  "process": "FDM_PRINTING",
  "production_volume": 100,
  "advanced_analysis": true
}`

func TestHealthIsOpen(t *testing.T) {
	s := newTestServer([]string{"secret"})

	w := s.do(http.MethodGet, "/health", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != "mfg-copilot-api" {
		t.Errorf("body = %v", body)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	s := newTestServer([]string{"secret"})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{name: "missing", key: "", want: http.StatusUnauthorized},
		{name: "wrong", key: "guess", want: http.StatusUnauthorized},
		{name: "valid", key: "secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/analyze", analyzeBody, tt.key)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAnalyzeReturnsFlatResult(t *testing.T) {
	s := newTestServer(nil)

	for _, path := range []string{"/analyze", "/api/v2/analyze"} {
		t.Run(path, func(t *testing.T) {
			// Act
			w := s.do(http.MethodPost, path, analyzeBody, "")

			// Assert
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var result dfm.AnalysisResult
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if result.Source != dfm.SourceLocalFallback {
				t.Errorf("source = %s, want local_fallback", result.Source)
			}
			if result.ManufacturabilityScore >= 90 || len(result.Issues) == 0 {
				t.Errorf("thin part should lose points, got %d with %d issues", result.ManufacturabilityScore, len(result.Issues))
			}
			if result.CostEstimate.Min < 0 || result.CostEstimate.Max < result.CostEstimate.Min {
				t.Errorf("cost estimate = %+v", result.CostEstimate)
			}
		})
	}
}

func TestAnalyzeMalformedInput(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"cad_data":`},
		{name: "missing cad data", body: `{"material":"PLA"}`},
		{name: "cad data not an object", body: `{"cad_data":[1,2,3]}`},
		{name: "zero production volume", body: `{"cad_data":{"volume":1},"production_volume":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/analyze", tt.body, "")

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
			var resp ginx.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Meta.Code != http.StatusBadRequest {
				t.Errorf("meta.code = %d, want 400", resp.Meta.Code)
			}
		})
	}
}

func TestValidationDetailsUseJSONFieldNames(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodPost, "/analyze", `{"cad_data":{"volume":1},"production_volume":-3}`, "")

	var resp ginx.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Meta.Details) != 1 || resp.Meta.Details[0].Path != "production_volume" {
		t.Fatalf("details = %+v, want one entry for production_volume", resp.Meta.Details)
	}
	if resp.Meta.RequestID == "" {
		t.Error("meta.request_id is empty")
	}
}

func TestCreateAnalysisReturnsProcessing(t *testing.T) {
	// Arrange
	s := newTestServer(nil)

	// Act
	w := s.do(http.MethodPost, "/api/v1/analyses?wait=1", analyzeBody, "")

	// Assert
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Meta ginx.Meta           `json:"meta"`
		Data ginx.ProcessingData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Meta.Code != ginx.CodeProcessing {
		t.Errorf("meta.code = %d, want %d", resp.Meta.Code, ginx.CodeProcessing)
	}
	if resp.Data.PollURL != "/api/v1/analyses/"+resp.Data.AnalysisID {
		t.Errorf("poll url = %q", resp.Data.PollURL)
	}
	if s.dispatcher.Dispatched != 1 {
		t.Errorf("dispatched = %d, want 1", s.dispatcher.Dispatched)
	}

	// 轮询：模拟 worker 完成
	stored := s.store.records[resp.Data.AnalysisID]
	if stored == nil {
		t.Fatalf("analysis was not stored")
	}
	stored.Complete(&dfm.AnalysisResult{ManufacturabilityScore: 70, OverallRating: dfm.RatingMedium, Source: dfm.SourceLocalFallback})

	poll := s.do(http.MethodGet, resp.Data.PollURL, "", "")
	if poll.Code != http.StatusOK || !strings.Contains(poll.Body.String(), `"status":"DONE"`) {
		t.Errorf("poll = %d %s", poll.Code, poll.Body.String())
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodGet, "/api/v1/analyses/missing", "", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer([]string{"secret"})

	w := s.do(http.MethodOptions, "/analyze", "", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-API-Key") {
		t.Errorf("allow headers = %q", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w := httptest.NewRecorder()

	s.engine.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
}

func TestRejectedKeysDoNotConsumeRateLimit(t *testing.T) {
	// Arrange
	s := newTestServerWith(Options{APIKeys: []string{"secret"}, RateLimit: 0.001, RateBurst: 1})

	// Act
	for i := 0; i < 5; i++ {
		if w := s.do(http.MethodGet, "/api/dfm/costs/FDM/PLA", "", "guess"); w.Code != http.StatusUnauthorized {
			t.Fatalf("request %d status = %d, want 401", i, w.Code)
		}
	}
	first := s.do(http.MethodGet, "/api/dfm/costs/FDM/PLA", "", "secret")
	second := s.do(http.MethodGet, "/api/dfm/costs/FDM/PLA", "", "secret")

	// Assert
	if first.Code != http.StatusOK {
		t.Errorf("first valid request status = %d, want 200", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second valid request status = %d, want 429", second.Code)
	}
}

func TestQuoteCosts(t *testing.T) {
	// Arrange
	s := newTestServer(nil)

	// Act
	w := s.do(http.MethodGet, "/api/dfm/costs/cnc/aluminum?volume=5000&quantity=20", "", "")

	// Assert
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Meta ginx.Meta `json:"meta"`
		Data dfm.Quote `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Process != dfm.ProcessCNC || resp.Data.Material != dfm.MaterialAluminum {
		t.Errorf("quote = %s/%s, want CNC_MACHINING/ALUMINUM", resp.Data.Process, resp.Data.Material)
	}
	if resp.Data.VolumeMM3 != 5000 || resp.Data.Quantity != 20 {
		t.Errorf("quote volume/quantity = %v/%d, want 5000/20", resp.Data.VolumeMM3, resp.Data.Quantity)
	}
	if resp.Data.CostEstimate.IssuePenalty != 0 || resp.Data.CostEstimate.Max < resp.Data.CostEstimate.Min {
		t.Errorf("cost estimate = %+v", resp.Data.CostEstimate)
	}
	if s.dispatcher.Dispatched != 0 || len(s.store.records) != 0 {
		t.Errorf("quote should not create or dispatch analyses")
	}
}

func TestQuoteCostsDefaultsAndValidation(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name     string
		path     string
		want     int
		wantPath string
	}{
		{name: "defaults", path: "/api/dfm/costs/FDM/PLA", want: http.StatusOK},
		{name: "zero volume", path: "/api/dfm/costs/FDM/PLA?volume=0", want: http.StatusBadRequest, wantPath: "volume"},
		{name: "negative quantity", path: "/api/dfm/costs/FDM/PLA?quantity=-2", want: http.StatusBadRequest, wantPath: "quantity"},
		{name: "volume not a number", path: "/api/dfm/costs/FDM/PLA?volume=big", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, tt.path, "", "")

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
			if tt.wantPath == "" {
				return
			}
			var resp ginx.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(resp.Meta.Details) != 1 || resp.Meta.Details[0].Path != tt.wantPath {
				t.Errorf("details = %+v, want one entry for %s", resp.Meta.Details, tt.wantPath)
			}
		})
	}
}
