package route

import (
	"context"
	"fmt"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/queue"
	"github.com/kbukum/routekit/validation"
)

// Split forwards each item from one input queue to the output queue keyed
// by a predicate.
type Split[T any, K comparable] struct {
	base

	predicate Predicate[T, K]
	in        queue.Queue[T]
	routes    Routes[K, T]
	outputs   []queue.Queue[T]

	// halted is written and read by Step only.
	halted error
}

var _ graph.Node = (*Split[int, bool])(nil)

// NewSplit creates a Split reading from in. routes must cover every key
// predicate can return; a key without a route halts the operator.
func NewSplit[T any, K comparable](
	name string,
	predicate Predicate[T, K],
	in queue.Queue[T],
	routes Routes[K, T],
	opts ...Option,
) (*Split[T, K], error) {
	v := validation.New()
	v.Check(predicate != nil, "predicate", "is required")
	v.Check(in != nil, "input", "is required")
	v.Check(len(routes) > 0, "routes", "at least one route is required")
	for key, q := range routes {
		v.Check(q != nil, fmt.Sprintf("routes[%v]", key), "queue is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	copied := make(Routes[K, T], len(routes))
	for k, q := range routes {
		copied[k] = q
	}

	return &Split[T, K]{
		base:      newBase(name, "split", buildOptions(opts)),
		predicate: predicate,
		in:        in,
		routes:    copied,
		outputs:   copied.Queues(),
	}, nil
}

// Kind reports that Split is an operator node.
func (s *Split[T, K]) Kind() graph.Kind { return graph.KindOp }

// Step moves at most one item from the input queue.
//
// A sentinel is copied once to every distinct output queue and shuts the
// operator down. A predicate error is returned as PREDICATE_FAILED and the
// operator keeps running; the offending item is dropped. A key with no
// route is returned as UNROUTABLE and halts the operator: every later Step
// returns the same error without touching any queue.
func (s *Split[T, K]) Step(ctx context.Context) (bool, error) {
	switch s.State() {
	case StateShutDown:
		return true, nil
	case StateHalted:
		return false, s.halted
	}

	item, ok := s.in.TryGet()
	if !ok {
		return false, nil
	}
	s.in.Done()

	if item.IsSentinel() {
		s.sentinelsIn.Add(1)
		s.broadcastSentinel()
		return true, nil
	}

	key, err := s.predicate(ctx, item.Value())
	if err != nil {
		return false, errors.PredicateFailed(s.name, err)
	}

	out, err := s.routes.Lookup(s.name, key)
	if err != nil {
		s.halted = err
		s.state.Store(int32(StateHalted))
		s.log.WithContext(ctx).Error("split halted", logger.MergeWithError(
			logger.Fields(logger.FieldKey, fmt.Sprint(key)), err,
		))
		return false, err
	}

	out.Put(item)
	s.routed.Add(1)
	return false, nil
}

func (s *Split[T, K]) broadcastSentinel() {
	for _, q := range s.outputs {
		q.Put(queue.Sentinel[T]())
		s.sentinelsOut.Add(1)
	}
	s.state.Store(int32(StateShutDown))
	s.log.Debug("split shut down", logger.Fields(
		logger.FieldCount, s.routed.Load(),
	))
}

// Ready returns the input queue's notification channel.
func (s *Split[T, K]) Ready() ([]<-chan struct{}, bool) {
	return graph.QueueReady(s.in)
}

// Endpoints returns the IDs of the input and output queues.
func (s *Split[T, K]) Endpoints() (inputs, outputs []string) {
	return graph.QueueIDs(s.in), graph.QueueIDs(s.outputs...)
}
