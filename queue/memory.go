package queue

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Memory is an unbounded in-process Queue backed by a ring-buffer deque.
type Memory[T any] struct {
	id   string
	name string

	mu         sync.Mutex
	items      deque.Deque[Item[T]]
	unfinished int
	changed    chan struct{} // closed and replaced on every Put
	idle       chan struct{} // closed while unfinished == 0
}

var (
	_ Queue[int] = (*Memory[int])(nil)
	_ Notifier   = (*Memory[int])(nil)
	_ Identified = (*Memory[int])(nil)
)

// NewMemory creates an empty queue. The name is used in logs only.
func NewMemory[T any](name string) *Memory[T] {
	idle := make(chan struct{})
	close(idle)
	return &Memory[T]{
		id:      uuid.NewString(),
		name:    name,
		changed: make(chan struct{}),
		idle:    idle,
	}
}

// ID returns the queue's unique identifier.
func (m *Memory[T]) ID() string { return m.id }

// Name returns the queue's display name.
func (m *Memory[T]) Name() string { return m.name }

// Put appends an item and wakes every goroutine waiting on Notify or Get.
func (m *Memory[T]) Put(item Item[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items.PushBack(item)
	if m.unfinished == 0 {
		m.idle = make(chan struct{})
	}
	m.unfinished++

	close(m.changed)
	m.changed = make(chan struct{})
}

// Get removes and returns the next item, blocking until one arrives or ctx
// is done.
func (m *Memory[T]) Get(ctx context.Context) (Item[T], error) {
	for {
		m.mu.Lock()
		if m.items.Len() > 0 {
			item := m.items.PopFront()
			m.mu.Unlock()
			return item, nil
		}
		changed := m.changed
		m.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			var zero Item[T]
			return zero, ctx.Err()
		}
	}
}

// TryGet removes and returns the next item without blocking.
func (m *Memory[T]) TryGet() (Item[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items.Len() == 0 {
		var zero Item[T]
		return zero, false
	}
	return m.items.PopFront(), true
}

// Empty reports whether the queue holds no items.
func (m *Memory[T]) Empty() bool {
	return m.Len() == 0
}

// Len returns the number of items currently queued.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Len()
}

// Done acknowledges one removed item. It panics if called more times than
// items were put, like sync.WaitGroup does for a negative counter.
func (m *Memory[T]) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unfinished <= 0 {
		panic("queue: Done called more times than items were put")
	}
	m.unfinished--
	if m.unfinished == 0 {
		close(m.idle)
	}
}

// Join blocks until every item put so far has been acknowledged with Done,
// or ctx is done.
func (m *Memory[T]) Join(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify returns a channel that is closed while the queue holds an item:
// already closed if the queue is non-empty, otherwise closed by the next
// Put. Taking the channel after a failed TryGet therefore cannot miss a Put.
func (m *Memory[T]) Notify() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items.Len() > 0 {
		return closedChan
	}
	return m.changed
}
