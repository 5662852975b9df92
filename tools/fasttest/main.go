package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"mfgcopilot/internal/bootstrap"
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/pkg/config"
	"mfgcopilot/pkg/logger"
)

// TestCase 离线分析用例
type TestCase struct {
	Name             string          `json:"name"`
	CADData          json.RawMessage `json:"cad_data"`
	Material         string          `json:"material"`
	Process          string          `json:"process"`
	ProductionVolume int             `json:"production_volume"`
	ExpectScore      *int            `json:"expect_score,omitempty"`
	ExpectRating     string          `json:"expect_rating,omitempty"`
	ExpectError      bool            `json:"expect_error,omitempty"`
}

var (
	configPath   = flag.String("config", "./config/worker.yaml", "配置文件路径（只读取 engine/remote 段）")
	testcasePath = flag.String("testcase", "./tools/fasttest/testcase.json", "用例文件路径")
	localOnly    = flag.Bool("local", false, "忽略 remote 配置，只跑本地引擎")
	verbose      = flag.Bool("v", false, "打印完整结果")
)

// 用法: go run ./tools/fasttest -testcase cases.json -local
func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	remoteCfg := cfg.Remote
	if *localOnly {
		remoteCfg.Endpoint = ""
	}

	log, err := logger.NewZapLogger(logger.Options{Level: "warn", Encoding: "console", Service: "fasttest"})
	if err != nil {
		fmt.Printf("❌ Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. 组装编排器
	orchestrator := bootstrap.NewOrchestrator(cfg.Engine, remoteCfg, log)

	// 3. 加载用例
	testCases, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d test cases from %s (remote=%q)\n", len(testCases), *testcasePath, remoteCfg.Endpoint)

	// 4. 执行用例
	fmt.Println("\n========================================")
	fmt.Println("  Running Test Cases")
	fmt.Println("========================================")

	successCount := 0
	failureCount := 0
	for i, tc := range testCases {
		fmt.Printf("\n[Test %d/%d] %s\n", i+1, len(testCases), tc.Name)
		fmt.Println("----------------------------------------")

		startTime := time.Now()
		err := runTestCase(orchestrator, tc)
		duration := time.Since(startTime)

		if err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
			failureCount++
		} else {
			fmt.Printf("✅ PASSED\n")
			successCount++
		}
		fmt.Printf("⏱️  Duration: %v\n", duration)
	}

	// 5. 汇总
	fmt.Println("\n========================================")
	fmt.Println("  Test Summary")
	fmt.Println("========================================")
	fmt.Printf("Total: %d\n", len(testCases))
	fmt.Printf("Passed: %d ✅\n", successCount)
	fmt.Printf("Failed: %d ❌\n", failureCount)

	if failureCount > 0 {
		os.Exit(1)
	}
}

// loadTestCases 从 JSON 文件加载用例
func loadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var testCases []TestCase
	if err := json.Unmarshal(data, &testCases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}
	return testCases, nil
}

// runTestCase 执行单个用例并校验期望值
func runTestCase(o *fallback.Orchestrator, tc TestCase) error {
	var cad any
	if len(tc.CADData) > 0 {
		if err := json.Unmarshal(tc.CADData, &cad); err != nil {
			return fmt.Errorf("invalid cad_data: %w", err)
		}
	}

	out, err := o.Run(context.Background(), &fallback.AnalyzeInput{
		CADData: cad,
		Request: dfm.ManufacturingRequest{
			Material:         dfm.MaterialKind(tc.Material),
			Process:          dfm.ProcessKind(tc.Process),
			ProductionVolume: tc.ProductionVolume,
		},
	})
	if tc.ExpectError {
		if err == nil {
			return fmt.Errorf("expected analysis error, got score=%d", out.Result.ManufacturabilityScore)
		}
		fmt.Printf("  Rejected as expected: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	r := out.Result
	fmt.Printf("  Source=%s Score=%d Rating=%s Issues=%d\n", out.Source, r.ManufacturabilityScore, r.OverallRating, len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Printf("    - [%s] %s: %s\n", issue.Severity, issue.Rule, issue.Message)
	}
	fmt.Printf("  Cost=%.2f~%.2f %s, LeadTime=%d~%d days\n",
		r.CostEstimate.Min, r.CostEstimate.Max, r.CostEstimate.Currency, r.LeadTime.Min, r.LeadTime.Max)
	if *verbose {
		raw, _ := json.MarshalIndent(r, "  ", "  ")
		fmt.Printf("  %s\n", raw)
	}

	if tc.ExpectScore != nil && *tc.ExpectScore != r.ManufacturabilityScore {
		return fmt.Errorf("score = %d, want %d", r.ManufacturabilityScore, *tc.ExpectScore)
	}
	if tc.ExpectRating != "" && tc.ExpectRating != string(r.OverallRating) {
		return fmt.Errorf("rating = %s, want %s", r.OverallRating, tc.ExpectRating)
	}
	return nil
}
