package routine

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func awaitMessage(t *testing.T, messages <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestTriggerSuccess(t *testing.T) {
	bus := NewBus()
	messages := bus.Subscribe()

	r := New("TEST_FETCH", func(ctx context.Context, params interface{}) (interface{}, error) {
		return params.(int) * 2, nil
	}, bus)

	result := <-r.Trigger(context.Background(), 21)
	if result.Err != nil {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if result.Value.(int) != 42 {
		t.Errorf("result: got %v, want 42", result.Value)
	}

	started := awaitMessage(t, messages)
	startedMsg, ok := started.(Started)
	if !ok {
		t.Fatalf("first message: got %T, want Started", started)
	}
	if started.Type() != "TEST_FETCH_STARTED" {
		t.Errorf("started type: got %s", started.Type())
	}
	if startedMsg.Params.(int) != 21 {
		t.Errorf("started params: got %v, want 21", startedMsg.Params)
	}

	done := awaitMessage(t, messages)
	doneMsg, ok := done.(Done)
	if !ok {
		t.Fatalf("second message: got %T, want Done", done)
	}
	if doneMsg.Params.(int) != 21 || doneMsg.Result.(int) != 42 {
		t.Errorf("done payload: got params %v result %v", doneMsg.Params, doneMsg.Result)
	}
}

func TestTriggerFailureIsReported(t *testing.T) {
	bus := NewBus()
	messages := bus.Subscribe()
	workerErr := errors.New("remote exploded")

	r := NewThrowing("TEST_FETCH", func(ctx context.Context, params interface{}) (interface{}, error) {
		return nil, workerErr
	}, bus)

	result := <-r.Trigger(context.Background(), "params")
	if !errors.Is(result.Err, workerErr) {
		t.Fatalf("throwing routine did not propagate the error, got %v", result.Err)
	}

	if _, ok := awaitMessage(t, messages).(Started); !ok {
		t.Fatal("expected Started first")
	}
	failed, ok := awaitMessage(t, messages).(Failed)
	if !ok {
		t.Fatal("expected Failed after Started")
	}
	if !errors.Is(failed.Err, workerErr) {
		t.Errorf("failed message error: got %v, want %v", failed.Err, workerErr)
	}

	// The failure must also land on the process-wide error channel.
	select {
	case err := <-bus.Errors():
		if !errors.Is(err, workerErr) {
			t.Errorf("error channel: got %v, want %v", err, workerErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker failure never reached the error channel")
	}
}

func TestCancellationEmitsFailedCancelled(t *testing.T) {
	bus := NewBus()
	messages := bus.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	r := New("TEST_SYNC", func(ctx context.Context, params interface{}) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, bus)

	resultChan := r.Trigger(ctx, nil)
	cancel()
	<-resultChan

	if _, ok := awaitMessage(t, messages).(Started); !ok {
		t.Fatal("expected Started first")
	}

	// The worker's own context error surfaces first, then the guaranteed
	// cleanup step emits the cancellation failure.
	sawCancelled := false
	for i := 0; i < 2; i++ {
		msg := awaitMessage(t, messages)
		failed, ok := msg.(Failed)
		if !ok {
			t.Fatalf("message %d: got %T, want Failed", i, msg)
		}
		if errors.Is(failed.Err, ErrCancelled) {
			sawCancelled = true
			if failed.Err.Error() != "cancelled" {
				t.Errorf("cancellation error text: got %q", failed.Err.Error())
			}
		}
	}
	if !sawCancelled {
		t.Error("no Failed message carried ErrCancelled")
	}
}

func TestStageIsAPureProjection(t *testing.T) {
	bus := NewBus()
	mine := New("MINE", nil, bus)

	tests := []struct {
		name     string
		msg      Message
		expected Stage
	}{
		{"nil message", nil, StageNone},
		{"own started", Started{Routine: "MINE"}, StageStarted},
		{"own done", Done{Routine: "MINE"}, StageDone},
		{"own failed", Failed{Routine: "MINE"}, StageFailed},
		{"own stop control", Stop{Routine: "MINE"}, StageNone},
		{"foreign done", Done{Routine: "OTHER"}, StageNone},
	}
	for _, test := range tests {
		if got := mine.Stage(test.msg); got != test.expected {
			t.Errorf("%s: got %s, want %s", test.name, got, test.expected)
		}
	}
}

func TestSwitchDispatchesExactlyOneHandler(t *testing.T) {
	bus := NewBus()
	mine := New("MINE", nil, bus)

	var startedCalls, doneCalls, failedCalls int
	cases := Cases{
		Started: func(params interface{}) { startedCalls++ },
		Done:    func(params, result interface{}) { doneCalls++ },
		Failed:  func(params interface{}, err error) { failedCalls++ },
	}

	if !mine.Switch(Done{Routine: "MINE", Result: 7}, cases) {
		t.Fatal("Switch did not recognize its own message")
	}
	if startedCalls != 0 || doneCalls != 1 || failedCalls != 0 {
		t.Errorf("handler calls: started=%d done=%d failed=%d", startedCalls, doneCalls, failedCalls)
	}

	// Foreign messages invoke no handler at all.
	if mine.Switch(Failed{Routine: "OTHER"}, cases) {
		t.Error("Switch handled a foreign message")
	}
	if failedCalls != 0 {
		t.Errorf("foreign message invoked a handler")
	}
}
