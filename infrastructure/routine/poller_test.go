package routine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestPollerRepeatsAfterFirstSuccess(t *testing.T) {
	bus := NewBus()
	var executions int32

	r := New("TEST_POLL", func(ctx context.Context, params interface{}) (interface{}, error) {
		atomic.AddInt32(&executions, 1)
		return nil, nil
	}, bus)

	p := NewPoller(r, 10*time.Millisecond)
	err := p.Start(context.Background(), nil)
	if err != nil {
		t.Fatalf("Start: %s", err)
	}
	defer p.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&executions) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("poller executed %d times, want at least 3", executions)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := p.Start(context.Background(), nil); err == nil {
		t.Error("second Start while polling should fail")
	}
}

func TestPollerDoesNotPollAfterFirstFailure(t *testing.T) {
	bus := NewBus()
	var executions int32

	r := New("TEST_POLL", func(ctx context.Context, params interface{}) (interface{}, error) {
		atomic.AddInt32(&executions, 1)
		return nil, errors.New("first run failed")
	}, bus)

	p := NewPoller(r, time.Millisecond)
	err := p.Start(context.Background(), nil)
	if err != nil {
		t.Fatalf("Start: %s", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&executions); got != 1 {
		t.Errorf("executions after failed first run: got %d, want 1", got)
	}
	if p.IsPolling() {
		t.Error("poller kept its schedule after the first failure")
	}
}

func TestPollerStopCancelsInFlightExecution(t *testing.T) {
	bus := NewBus()
	messages := bus.Subscribe()
	started := make(chan struct{})

	r := New("TEST_POLL", func(ctx context.Context, params interface{}) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, bus)

	p := NewPoller(r, time.Minute)
	err := p.Start(context.Background(), "sync-params")
	if err != nil {
		t.Fatalf("Start: %s", err)
	}

	<-started
	p.Stop()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-messages:
			if failed, ok := msg.(Failed); ok && errors.Is(failed.Err, ErrCancelled) {
				if failed.Params.(string) != "sync-params" {
					t.Errorf("cancellation kept wrong params: %v", failed.Params)
				}
				return
			}
		case <-deadline:
			t.Fatal("never observed Failed(cancelled) after Stop")
		}
	}
}
