package stream

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/queue"
)

// Source is a graph node that moves values from an Iterator onto a queue.
type Source[T any] struct {
	name     string
	it       Iterator[T]
	out      queue.Queue[T]
	shutdown atomic.Bool
	produced atomic.Int64
}

var _ graph.Node = (*Source[int])(nil)

// NewSource creates a Source writing to out.
func NewSource[T any](name string, it Iterator[T], out queue.Queue[T]) *Source[T] {
	return &Source[T]{name: name, it: it, out: out}
}

func (s *Source[T]) Name() string     { return s.name }
func (s *Source[T]) Kind() graph.Kind { return graph.KindSource }

// Produced returns the number of values put on the output queue.
func (s *Source[T]) Produced() int64 { return s.produced.Load() }

// Step pulls one value from the iterator and puts it on the output queue.
// Once the iterator is exhausted it is closed, the sentinel is put and the
// source shuts down. A Step blocks only as long as the iterator's Next does.
func (s *Source[T]) Step(ctx context.Context) (bool, error) {
	if s.shutdown.Load() {
		return true, nil
	}

	val, ok, err := s.it.Next(ctx)
	if err != nil {
		return false, errors.Internal(fmt.Errorf("source %s: %w", s.name, err)).
			WithDetail("node", s.name)
	}
	if ok {
		s.out.Put(queue.Value(val))
		s.produced.Add(1)
		return false, nil
	}

	closeErr := s.it.Close()
	s.out.Put(queue.Sentinel[T]())
	s.shutdown.Store(true)
	if closeErr != nil {
		return true, errors.Internal(fmt.Errorf("closing source %s: %w", s.name, closeErr)).
			WithDetail("node", s.name)
	}
	return true, nil
}

// Endpoints returns the output queue's ID.
func (s *Source[T]) Endpoints() (inputs, outputs []string) {
	return nil, graph.QueueIDs(s.out)
}
