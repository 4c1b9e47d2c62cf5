package route

import (
	"context"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/queue"
)

// Predicate classifies a value into a routing key.
type Predicate[T any, K comparable] func(ctx context.Context, v T) (K, error)

// Routes maps routing keys to output queues. Several keys may share a
// queue.
type Routes[K comparable, T any] map[K]queue.Queue[T]

// Lookup returns the queue registered for key, or an UNROUTABLE error
// attributed to node.
func (r Routes[K, T]) Lookup(node string, key K) (queue.Queue[T], error) {
	q, ok := r[key]
	if !ok {
		return nil, errors.Unroutable(node, key)
	}
	return q, nil
}

// Queues returns each output queue once.
func (r Routes[K, T]) Queues() []queue.Queue[T] {
	qs := make([]queue.Queue[T], 0, len(r))
	for _, q := range r {
		qs = append(qs, q)
	}
	return distinct(qs)
}
