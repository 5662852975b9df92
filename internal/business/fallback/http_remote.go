package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"mfgcopilot/internal/business/dfm"
)

const maxRemoteBody = 4 << 20

// HTTPRemote 远端 DFM 服务 HTTP 客户端
type HTTPRemote struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPRemote 创建远端客户端；timeout 作为单次请求上限，调用方 context 可进一步收紧
func NewHTTPRemote(endpoint, apiKey string, timeout time.Duration) *HTTPRemote {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &HTTPRemote{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// CheckHealth GET {endpoint}/health，要求 2xx 且 status=healthy
func (r *HTTPRemote) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return &RemoteUnavailableError{Op: "health", Err: err}
	}
	r.setHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteUnavailableError{Op: "health", Err: fmt.Errorf("status=%d", resp.StatusCode)}
	}

	var health healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&health); err != nil {
		return &RemoteUnavailableError{Op: "health", Err: fmt.Errorf("decode health response: %w", err)}
	}
	if health.Status != "healthy" {
		return &RemoteUnavailableError{Op: "health", Err: fmt.Errorf("reported status %q", health.Status)}
	}
	return nil
}

// remoteRequest 远端分析请求体
type remoteRequest struct {
	CADData          any    `json:"cad_data"`
	Material         string `json:"material"`
	Process          string `json:"process"`
	ProductionVolume int    `json:"production_volume"`
	AdvancedAnalysis bool   `json:"advanced_analysis"`
}

// remoteResponse 必填字段使用指针以区分缺失
type remoteResponse struct {
	ManufacturabilityScore *float64          `json:"manufacturability_score"`
	OverallRating          *string           `json:"overall_rating"`
	PrimaryProcess         string            `json:"primary_process"`
	Issues                 []dfm.Issue       `json:"issues"`
	Recommendations        []string          `json:"recommendations"`
	CostEstimate           *dfm.CostEstimate `json:"cost_estimate"`
	LeadTime               *dfm.LeadTime     `json:"lead_time"`
}

// Analyze POST {endpoint}/api/v2/analyze
func (r *HTTPRemote) Analyze(ctx context.Context, in *AnalyzeInput) (*dfm.AnalysisResult, error) {
	body, err := json.Marshal(remoteRequest{
		CADData:          in.CADData,
		Material:         string(in.Request.Material),
		Process:          string(in.Request.Process),
		ProductionVolume: in.Request.ProductionVolume,
		AdvancedAnalysis: in.Request.UseAdvancedDFM,
	})
	if err != nil {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/api/v2/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	r.setHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: fmt.Errorf("status=%d", resp.StatusCode)}
	}

	var out remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&out); err != nil {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: fmt.Errorf("%w: %v", ErrInvalidRemoteResponse, err)}
	}
	return out.toResult()
}

func (r *HTTPRemote) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}
}

func (o *remoteResponse) toResult() (*dfm.AnalysisResult, error) {
	if o.ManufacturabilityScore == nil || o.OverallRating == nil || o.CostEstimate == nil || o.LeadTime == nil {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: fmt.Errorf("%w: missing required fields", ErrInvalidRemoteResponse)}
	}
	if score := *o.ManufacturabilityScore; score < 0 || score > 100 {
		return nil, &RemoteUnavailableError{Op: "analyze", Err: fmt.Errorf("%w: score %v out of range", ErrInvalidRemoteResponse, score)}
	}
	return &dfm.AnalysisResult{
		ManufacturabilityScore: int(math.Round(*o.ManufacturabilityScore)),
		OverallRating:          dfm.Rating(strings.ToUpper(*o.OverallRating)),
		PrimaryProcess:         dfm.ProcessKind(o.PrimaryProcess),
		Issues:                 o.Issues,
		Recommendations:        o.Recommendations,
		CostEstimate:           *o.CostEstimate,
		LeadTime:               *o.LeadTime,
		Source:                 dfm.SourceCloud,
	}, nil
}
