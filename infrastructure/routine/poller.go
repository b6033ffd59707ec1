package routine

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Poller drives a routine on a fixed schedule. The first trigger runs
// immediately; repeated triggers are scheduled only after that first execution
// succeeds. Stop halts the schedule and cancels any in-flight execution.
type Poller struct {
	routine  *Routine
	interval time.Duration

	mtx    sync.Mutex
	cancel context.CancelFunc
}

// NewPoller wraps routine with a polling schedule of the given interval.
func NewPoller(routine *Routine, interval time.Duration) *Poller {
	return &Poller{routine: routine, interval: interval}
}

// Routine returns the wrapped routine.
func (p *Poller) Routine() *Routine {
	return p.routine
}

// Start triggers the routine once and, after the first successful completion,
// keeps re-triggering it every interval until Stop is called or ctx is
// cancelled. Scheduled triggers are not serialized against one another: a slow
// execution may overlap the next tick's execution.
func (p *Poller) Start(ctx context.Context, params interface{}) error {
	p.mtx.Lock()
	if p.cancel != nil {
		p.mtx.Unlock()
		return errors.Errorf("routine %s is already polling", p.routine.Name())
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mtx.Unlock()

	spawn(func() {
		first := <-p.routine.Trigger(pollCtx, params)
		if first.Err != nil {
			// No polling unless the first execution succeeds.
			p.Stop()
			return
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				p.routine.Trigger(pollCtx, params)
			}
		}
	})
	return nil
}

// Stop halts the polling schedule and requests cancellation of any in-flight
// execution. Cancellation is cooperative: an execution observes it at its next
// checkpoint, so work already issued before that point completes. Stopping a
// poller that is not running is a no-op.
func (p *Poller) Stop() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// IsPolling returns whether the poller currently has a schedule running.
func (p *Poller) IsPolling() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.cancel != nil
}
