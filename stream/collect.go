package stream

import (
	"context"

	"github.com/kbukum/routekit/queue"
)

// Iter exposes a queue as an Iterator that blocks on Get and ends at the
// first sentinel. Every item taken is acknowledged with Done.
func Iter[T any](q queue.Queue[T]) Iterator[T] {
	return &queueIter[T]{q: q}
}

type queueIter[T any] struct {
	q    queue.Queue[T]
	done bool
}

func (it *queueIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	item, err := it.q.Get(ctx)
	if err != nil {
		return zero, false, err
	}
	it.q.Done()
	if item.IsSentinel() {
		it.done = true
		return zero, false, nil
	}
	return item.Value(), true, nil
}

func (it *queueIter[T]) Close() error {
	it.done = true
	return nil
}

// Drain pulls every value from it and passes it to fn, then closes it.
func Drain[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}

// Collect reads q until its sentinel and returns the values in order.
// On error the values read so far are returned with it.
func Collect[T any](ctx context.Context, q queue.Queue[T]) ([]T, error) {
	var result []T
	err := Drain(ctx, Iter(q), func(_ context.Context, v T) error {
		result = append(result, v)
		return nil
	})
	return result, err
}
