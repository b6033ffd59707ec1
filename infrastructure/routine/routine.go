package routine

import (
	"context"

	"github.com/pkg/errors"
)

// ErrCancelled is the error carried by the Failed message emitted when an
// execution's context is cancelled while the worker is still running.
var ErrCancelled = errors.New("cancelled")

// Worker is the asynchronous function a routine drives. It must respect ctx
// cancellation at its suspension points (network calls and the like).
type Worker func(ctx context.Context, params interface{}) (interface{}, error)

// Result carries the outcome of a single execution back to the caller that
// triggered it. In non-throwing mode the error has already been reported to
// the bus's error channel and logged; the channel then only signals
// completion.
type Result struct {
	Value interface{}
	Err   error
}

// Routine wraps a worker into the three-stage Started/Done/Failed lifecycle.
// A Routine is created once at process start and never destroyed; all of its
// state derives from the message stream it publishes.
type Routine struct {
	name     string
	worker   Worker
	bus      *Bus
	throwing bool
}

// New creates a routine that reports worker failures to the bus only. The
// returned result channel of Trigger should be used for completion signaling.
func New(name string, worker Worker, bus *Bus) *Routine {
	return &Routine{name: name, worker: worker, bus: bus}
}

// NewThrowing creates a routine whose worker failures are, in addition to the
// bus reporting, propagated to the triggering caller for its own handling.
func NewThrowing(name string, worker Worker, bus *Bus) *Routine {
	return &Routine{name: name, worker: worker, bus: bus, throwing: true}
}

// Name returns the routine's unique name.
func (r *Routine) Name() string {
	return r.name
}

// Trigger starts one execution of the routine. A Started message is published
// immediately, then the worker runs on its own goroutine; Done or Failed
// follows on the bus, and the returned channel receives the outcome.
//
// Triggering while a previous execution is in flight starts a new concurrent
// execution; the engine neither serializes nor de-duplicates overlapping
// triggers. Across overlapping executions Started/Done pairs may interleave
// arbitrarily, so consumers must correlate outcomes by the Params carried in
// each message rather than by the most recently observed stage.
//
// If ctx is cancelled while the worker is running, a final Failed message
// carrying ErrCancelled is published after the normal emission path resolves,
// regardless of which exit path was taken.
func (r *Routine) Trigger(ctx context.Context, params interface{}) <-chan Result {
	resultChan := make(chan Result, 1)
	r.bus.Publish(Started{Routine: r.name, Params: params})

	spawn(func() {
		// The cancellation check runs unconditionally after the
		// Done/Failed emission path, mirroring a finally step.
		defer func() {
			if ctx.Err() != nil {
				r.bus.Publish(Failed{Routine: r.name, Params: params, Err: ErrCancelled})
			}
		}()

		value, err := r.worker(ctx, params)
		if err != nil {
			r.bus.Publish(Failed{Routine: r.name, Params: params, Err: err})
			r.bus.reportError(err)
			if !r.throwing {
				log.Errorf("routine %s failed: %+v", r.name, err)
			}
			resultChan <- Result{Err: err}
			return
		}

		r.bus.Publish(Done{Routine: r.name, Params: params, Result: value})
		resultChan <- Result{Value: value}
	})

	return resultChan
}

// Stage projects a message onto the lifecycle stage it signals for this
// routine. Messages belonging to other routines, control messages and nil
// yield StageNone.
func (r *Routine) Stage(msg Message) Stage {
	if msg == nil || msg.RoutineName() != r.name {
		return StageNone
	}
	return msg.MessageStage()
}

// Cases holds the per-stage handlers for Switch. A nil handler means the
// corresponding stage is ignored.
type Cases struct {
	Started func(params interface{})
	Done    func(params interface{}, result interface{})
	Failed  func(params interface{}, err error)
}

// Switch dispatches msg to exactly one of the handlers in cases, based on the
// message kind. Messages that do not belong to this routine invoke no handler;
// the return value reports whether a handler was considered.
func (r *Routine) Switch(msg Message, cases Cases) bool {
	if msg == nil || msg.RoutineName() != r.name {
		return false
	}
	switch m := msg.(type) {
	case Started:
		if cases.Started != nil {
			cases.Started(m.Params)
		}
	case Done:
		if cases.Done != nil {
			cases.Done(m.Params, m.Result)
		}
	case Failed:
		if cases.Failed != nil {
			cases.Failed(m.Params, m.Err)
		}
	default:
		return false
	}
	return true
}
