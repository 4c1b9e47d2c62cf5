package stream

import "context"

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// FromSlice returns an Iterator over items.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromFunc returns an Iterator that calls next for every value. next
// reports exhaustion by returning false.
func FromFunc[T any](next func(ctx context.Context) (T, bool, error)) Iterator[T] {
	return &funcIter[T]{next: next}
}

// Range returns an Iterator over the integers [from, to).
func Range(from, to int) Iterator[int] {
	i := from
	return FromFunc(func(context.Context) (int, bool, error) {
		if i >= to {
			return 0, false, nil
		}
		i++
		return i - 1, true, nil
	})
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	next func(ctx context.Context) (T, bool, error)
	done bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, ok, err := it.next(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		it.done = true
		return zero, false, nil
	}
	return val, true, nil
}

func (it *funcIter[T]) Close() error {
	it.done = true
	return nil
}
