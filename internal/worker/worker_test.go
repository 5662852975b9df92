package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"

	"mfgcopilot/internal/framework"
	"mfgcopilot/pkg/lmstfyx"
	"mfgcopilot/pkg/logger"
)

// MockSource for testing
type MockSource struct {
	mu      sync.Mutex
	pending []*framework.Message
	acked   []string
}

func (m *MockSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, nil
	}
	msg := m.pending[0]
	m.pending = m.pending[1:]
	return msg, nil
}

func (m *MockSource) Ack(queue string, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, jobID)
	return nil
}

func (m *MockSource) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

func TestWorkerAcksByAction(t *testing.T) {
	// Arrange
	source := &MockSource{pending: []*framework.Message{
		{ID: "ok", Queue: "q", Data: []byte("success")},
		{ID: "retry", Queue: "q", Data: []byte("release")},
		{ID: "dead", Queue: "q", Data: []byte("bury")},
	}}
	var mu sync.Mutex
	seen := map[string]bool{}
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		switch string(job.Data) {
		case "release":
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
		case "bury":
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		default:
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
		}
	}

	w, err := NewWorkerInstance(context.Background(), "test",
		&framework.SubscriberConfig{QueueName: "q", Concurrency: 1, Rate: time.Millisecond, ErrorBackoff: time.Millisecond},
		&framework.ProcessorConfig{Concurrency: 1, BufferSize: 4, Timeout: time.Second},
		source, proc, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewWorkerInstance() error = %v", err)
	}

	// Act
	go w.Start()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	w.Shutdown()

	// Assert
	acked := map[string]bool{}
	for _, id := range source.Acked() {
		acked[id] = true
	}
	if !acked["ok"] || !acked["dead"] {
		t.Errorf("acked = %v, want ok and dead", source.Acked())
	}
	if acked["retry"] {
		t.Errorf("released message should not be acked")
	}
	want := framework.Stats{Succeeded: 1, Released: 1, Buried: 1}
	if got := w.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestNewWorkerRejectsTimeoutBeyondTTR(t *testing.T) {
	_, err := NewWorkerInstance(context.Background(), "test",
		&framework.SubscriberConfig{QueueName: "q", TTR: 10 * time.Second},
		&framework.ProcessorConfig{Timeout: 30 * time.Second},
		&MockSource{}, nil, logger.NewNopLogger())
	if err == nil {
		t.Fatal("NewWorkerInstance() error = nil, want ttr error")
	}
}
