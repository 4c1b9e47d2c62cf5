package queue

import "context"

// Queue is the FIFO contract shared by operators wired to it.
// Implementations must be safe for concurrent use.
type Queue[T any] interface {
	// Put appends an item.
	Put(item Item[T])
	// Get removes and returns the next item, blocking until one is available
	// or ctx is done.
	Get(ctx context.Context) (Item[T], error)
	// TryGet removes and returns the next item if there is one. The check and
	// the removal happen atomically.
	TryGet() (Item[T], bool)
	// Empty reports whether the queue currently holds no items.
	Empty() bool
	// Done acknowledges that the most recently removed item is fully processed.
	Done()
}

// Notifier is implemented by queues that can signal available items.
type Notifier interface {
	// Notify returns a channel that is closed once the queue holds an item.
	Notify() <-chan struct{}
}

// Identified is implemented by queues with a stable identity, used to derive
// graph edges between the nodes that share them.
type Identified interface {
	ID() string
}
