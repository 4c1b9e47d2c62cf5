package route

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/queue"
)

// State is the lifecycle state of an operator.
type State int32

const (
	StateRunning State = iota
	// StateHalted is entered by Split when an item has no route.
	StateHalted
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateHalted:
		return "HALTED"
	case StateShutDown:
		return "SHUT_DOWN"
	default:
		return "UNKNOWN"
	}
}

// Stats is a point-in-time snapshot of an operator's counters.
type Stats struct {
	// Routed counts value items forwarded to an output queue.
	Routed int64
	// SentinelsIn counts sentinels taken from input queues.
	SentinelsIn int64
	// SentinelsOut counts sentinels put on output queues.
	SentinelsOut int64
}

// Option configures an operator.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the logger used for shutdown and halt events.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("route")
	}
	return o
}

// base holds what Split and Merge share: identity, lifecycle and counters.
type base struct {
	name  string
	log   *logger.Logger
	state atomic.Int32

	routed       atomic.Int64
	sentinelsIn  atomic.Int64
	sentinelsOut atomic.Int64
}

func newBase(name, prefix string, o options) base {
	if name == "" {
		name = prefix + "-" + uuid.NewString()[:8]
	}
	return base{
		name: name,
		log:  o.log.ForNode(name, "op"),
	}
}

// Name returns the operator name.
func (b *base) Name() string { return b.name }

// State returns the current lifecycle state. Safe for concurrent use.
func (b *base) State() State { return State(b.state.Load()) }

// ShutDown reports whether the operator has forwarded end-of-stream.
// Safe for concurrent use.
func (b *base) ShutDown() bool { return b.State() == StateShutDown }

// Stats returns a snapshot of the operator's counters.
func (b *base) Stats() Stats {
	return Stats{
		Routed:       b.routed.Load(),
		SentinelsIn:  b.sentinelsIn.Load(),
		SentinelsOut: b.sentinelsOut.Load(),
	}
}

// distinct drops repeated queues, keeping first occurrences in order.
// Queues of non-comparable dynamic types are always kept.
func distinct[T any](qs []queue.Queue[T]) []queue.Queue[T] {
	out := make([]queue.Queue[T], 0, len(qs))
	for _, q := range qs {
		if !containsQueue(out, q) {
			out = append(out, q)
		}
	}
	return out
}

func containsQueue[T any](qs []queue.Queue[T], q queue.Queue[T]) bool {
	if !reflect.TypeOf(q).Comparable() {
		return false
	}
	for _, other := range qs {
		if reflect.TypeOf(other) == reflect.TypeOf(q) && other == q {
			return true
		}
	}
	return false
}
