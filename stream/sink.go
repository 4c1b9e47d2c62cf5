package stream

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/queue"
)

// Sink is a graph node that hands every value on a queue to a callback.
type Sink[T any] struct {
	name     string
	in       queue.Queue[T]
	fn       func(context.Context, T) error
	shutdown atomic.Bool
	consumed atomic.Int64
}

var _ graph.Node = (*Sink[int])(nil)

// NewSink creates a Sink reading from in. A nil fn discards values.
func NewSink[T any](name string, in queue.Queue[T], fn func(context.Context, T) error) *Sink[T] {
	if fn == nil {
		fn = func(context.Context, T) error { return nil }
	}
	return &Sink[T]{name: name, in: in, fn: fn}
}

func (s *Sink[T]) Name() string     { return s.name }
func (s *Sink[T]) Kind() graph.Kind { return graph.KindSink }

// Consumed returns the number of values passed to the callback.
func (s *Sink[T]) Consumed() int64 { return s.consumed.Load() }

// Step takes at most one item. The sentinel shuts the sink down; callback
// errors are returned unchanged.
func (s *Sink[T]) Step(ctx context.Context) (bool, error) {
	if s.shutdown.Load() {
		return true, nil
	}

	item, ok := s.in.TryGet()
	if !ok {
		return false, nil
	}
	s.in.Done()

	if item.IsSentinel() {
		s.shutdown.Store(true)
		return true, nil
	}
	s.consumed.Add(1)
	return false, s.fn(ctx, item.Value())
}

func (s *Sink[T]) Ready() ([]<-chan struct{}, bool) {
	return graph.QueueReady(s.in)
}

func (s *Sink[T]) Endpoints() (inputs, outputs []string) {
	return graph.QueueIDs(s.in), nil
}
