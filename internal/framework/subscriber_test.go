package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mfgcopilot/pkg/logger"
)

// MockSource for testing
type MockSource struct {
	mu       sync.Mutex
	failures int
	calls    int
	pending  []*Message
}

func (m *MockSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("connection refused")
	}
	if len(m.pending) == 0 {
		return nil, nil
	}
	msg := m.pending[0]
	m.pending = m.pending[1:]
	return msg, nil
}

func (m *MockSource) Ack(queue string, jobID string) error { return nil }

func TestSubscriberRecoversFromConsumeErrors(t *testing.T) {
	// Arrange
	source := &MockSource{failures: 2, pending: []*Message{{ID: "job-1", Queue: "q"}}}
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", ErrorBackoff: time.Millisecond}, source, logger.NewNopLogger())
	inputChan := make(chan *Message, 1)

	// Act
	if err := sub.Start(context.Background(), inputChan); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		sub.Stop()
		sub.Wait()
	}()

	// Assert
	select {
	case msg := <-inputChan:
		if msg.ID != "job-1" {
			t.Errorf("msg.ID = %s, want job-1", msg.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered after consume errors")
	}
}

func TestSubscriberStopInterruptsBackoff(t *testing.T) {
	source := &MockSource{failures: 1000}
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", ErrorBackoff: time.Hour}, source, logger.NewNopLogger())
	if err := sub.Start(context.Background(), make(chan *Message)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		sub.Stop()
		sub.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not interrupt the error backoff")
	}
}

func TestSubscriberLeavesUndeliveredJobOnShutdown(t *testing.T) {
	source := &MockSource{pending: []*Message{{ID: "job-1"}, {ID: "job-2"}}}
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q"}, source, logger.NewNopLogger())
	inputChan := make(chan *Message) // nobody reads

	if err := sub.Start(context.Background(), inputChan); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	sub.Stop()

	finished := make(chan struct{})
	go func() {
		sub.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("puller blocked on a full inputChan after Stop()")
	}
}
