package pulse

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Relay marshals record calls from multiple producer goroutines onto a
// single Monitor. The Monitor itself stays single-threaded and lock-free;
// the relay is the explicit message-passing seam for hosts that split UI
// and logic across threads. Query methods (GetMetrics and friends) are
// not relayed; call them from the consumer side.
type Relay struct {
	events chan relayEvent
	done   chan struct{}
	group  *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

type relayEvent interface {
	apply(*Monitor)
}

type frameEvent struct {
	durationMs  float64
	velocity    float64
	hasVelocity bool
}

func (e frameEvent) apply(m *Monitor) {
	if e.hasVelocity {
		m.RecordFrame(e.durationMs, e.velocity)
		return
	}
	m.RecordFrame(e.durationMs)
}

type scrollEvent struct {
	velocity float64
}

func (e scrollEvent) apply(m *Monitor) {
	m.RecordScrollEvent(e.velocity)
}

type sizingEvent struct {
	predicted float64
	actual    float64
	dynamic   bool
	latencyMs float64
}

func (e sizingEvent) apply(m *Monitor) {
	m.RecordSizing(e.predicted, e.actual, e.dynamic, e.latencyMs)
}

type accessEvent struct {
	key       string
	sizeBytes uint64
	hit       bool
}

func (e accessEvent) apply(m *Monitor) {
	m.RecordAccess(e.key, e.sizeBytes, e.hit)
}

// NewRelay starts a relay over the monitor with the given queue depth.
// The consumer goroutine runs until Close.
func NewRelay(ctx context.Context, m *Monitor, queueDepth int) *Relay {
	if queueDepth < 1 {
		queueDepth = 1
	}

	r := &Relay{
		events: make(chan relayEvent, queueDepth),
		done:   make(chan struct{}),
	}

	group, ctx := errgroup.WithContext(ctx)
	r.group = group
	group.Go(func() error {
		// done tells senders the consumer is gone, so they discard
		// instead of blocking on a queue nobody reads.
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				// Drain what producers already enqueued, then stop.
				// Cancellation is an ordinary shutdown, not a failure.
				for {
					select {
					case ev, ok := <-r.events:
						if !ok {
							return nil
						}
						ev.apply(m)
					default:
						return nil
					}
				}
			case ev, ok := <-r.events:
				if !ok {
					return nil
				}
				ev.apply(m)
			}
		}
	})

	return r
}

// RecordFrame enqueues a frame sample.
func (r *Relay) RecordFrame(durationMs float64, velocity ...float64) {
	ev := frameEvent{durationMs: durationMs}
	if len(velocity) > 0 {
		ev.velocity = velocity[0]
		ev.hasVelocity = true
	}
	r.send(ev)
}

// RecordScrollEvent enqueues a scroll sample.
func (r *Relay) RecordScrollEvent(velocity float64) {
	r.send(scrollEvent{velocity: velocity})
}

// RecordSizing enqueues a sizing sample.
func (r *Relay) RecordSizing(predicted, actual float64, isDynamic bool, latencyMs float64) {
	r.send(sizingEvent{predicted: predicted, actual: actual, dynamic: isDynamic, latencyMs: latencyMs})
}

// RecordAccess enqueues a cache access.
func (r *Relay) RecordAccess(key string, sizeBytes uint64, hit bool) {
	r.send(accessEvent{key: key, sizeBytes: sizeBytes, hit: hit})
}

func (r *Relay) send(ev relayEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.events <- ev:
	case <-r.done:
		// Consumer already stopped; discard like a late send.
	}
}

// Close stops accepting events, waits for the queue to drain, and stops
// the consumer. Events sent after Close are discarded.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()
	return r.group.Wait()
}
