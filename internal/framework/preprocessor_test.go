package framework

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mfgcopilot/pkg/errorutil"
)

func TestPreProcessorStopsAtFirstFailure(t *testing.T) {
	// Arrange
	var ran []string
	stage := func(name string, err error) Stage {
		return Stage{Name: name, Fn: func(ctx context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}
	boom := errorutil.NonRetriable("bad geometry", nil)
	p := NewPreProcessor(stage("pre", nil), stage("analyze", boom), stage("report", nil))

	// Act
	err := p.Run(context.Background())

	// Assert
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "stage analyze") {
		t.Errorf("error %q does not name the failing stage", err)
	}
	if strings.Join(ran, ",") != "pre,analyze" {
		t.Errorf("ran = %v, want [pre analyze]", ran)
	}
}

func TestPreProcessorExpiredContextIsRetryable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	called := false
	p := NewPreProcessor(Stage{Name: "pre", Fn: func(ctx context.Context) error {
		called = true
		return nil
	}})

	err := p.Run(ctx)
	if called {
		t.Error("stage ran after context expired")
	}
	if !errorutil.IsRetryable(err) {
		t.Errorf("Run() error = %v, want retryable", err)
	}
}

func TestCheckTTR(t *testing.T) {
	tests := []struct {
		name    string
		ttr     time.Duration
		timeout time.Duration
		wantErr bool
	}{
		{"no ttr", 0, time.Minute, false},
		{"timeout below ttr", time.Minute, 45 * time.Second, false},
		{"timeout equals ttr", time.Minute, time.Minute, true},
		{"default timeout above ttr", 30 * time.Second, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTTR(&SubscriberConfig{QueueName: "q", TTR: tt.ttr}, &ProcessorConfig{Timeout: tt.timeout})
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckTTR() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
