package queue

// Item is a queue element: a value or the end-of-stream sentinel.
// Items of a comparable T are themselves comparable, and every sentinel of
// a given T equals every other.
type Item[T any] struct {
	value T
	eos   bool
}

// Value wraps v as a value item.
func Value[T any](v T) Item[T] {
	return Item[T]{value: v}
}

// Sentinel returns the end-of-stream marker for queues of T.
func Sentinel[T any]() Item[T] {
	return Item[T]{eos: true}
}

// IsSentinel reports whether the item marks end-of-stream.
func (i Item[T]) IsSentinel() bool {
	return i.eos
}

// Value returns the wrapped value. It is the zero value for a sentinel.
func (i Item[T]) Value() T {
	return i.value
}
