package routine

import (
	"sync"
)

const (
	subscriberBuffer = 64
	errorBuffer      = 64
)

// Sink receives every message published to a Bus, in publish order. It is the
// persistence boundary for the message stream: the bus hands messages over and
// performs no storage itself.
type Sink interface {
	Append(msg Message) error
}

// Bus is the process-wide message bus routines publish their lifecycle
// messages to. Hosts subscribe to project messages into their own state;
// worker failures are additionally reported to a dedicated error channel so
// they are never silently dropped.
type Bus struct {
	mtx         sync.Mutex
	subscribers []chan Message
	sinks       []Sink
	errChan     chan error
}

// NewBus creates an empty message bus.
func NewBus() *Bus {
	return &Bus{
		errChan: make(chan error, errorBuffer),
	}
}

// Subscribe registers a new subscriber and returns its channel. A subscriber
// that stops draining its channel loses messages rather than stalling
// publishers.
func (b *Bus) Subscribe() <-chan Message {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	ch := make(chan Message, subscriberBuffer)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// AddSink registers a sink that receives every published message.
func (b *Bus) AddSink(sink Sink) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Publish delivers msg to all subscribers and sinks. Publishing never blocks:
// a subscriber with a full channel misses the message.
func (b *Bus) Publish(msg Message) {
	b.mtx.Lock()
	subscribers := make([]chan Message, len(b.subscribers))
	copy(subscribers, b.subscribers)
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mtx.Unlock()

	log.Tracef("publishing %s", msg.Type())
	for _, ch := range subscribers {
		select {
		case ch <- msg:
		default:
			log.Warnf("subscriber channel full, dropping %s", msg.Type())
		}
	}
	for _, sink := range sinks {
		err := sink.Append(msg)
		if err != nil {
			log.Errorf("message sink failed for %s: %s", msg.Type(), err)
		}
	}
}

// Errors returns the process-wide error channel worker failures are reported
// to.
func (b *Bus) Errors() <-chan error {
	return b.errChan
}

// reportError forwards a worker failure to the error channel. If nothing is
// draining the channel the error is logged instead of being dropped silently.
func (b *Bus) reportError(err error) {
	select {
	case b.errChan <- err:
	default:
		log.Errorf("error channel full, worker failure: %+v", err)
	}
}
