package route

import (
	"context"
	"fmt"

	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/queue"
	"github.com/kbukum/routekit/validation"
)

// Merge forwards items from several input queues to one output queue and
// emits a single sentinel once every input has ended.
type Merge[T any] struct {
	base

	ins    []queue.Queue[T]
	out    queue.Queue[T]
	closed []bool
	ended  int
}

var _ graph.Node = (*Merge[int])(nil)

// NewMerge creates a Merge expecting one sentinel from each of ins.
func NewMerge[T any](name string, ins []queue.Queue[T], out queue.Queue[T], opts ...Option) (*Merge[T], error) {
	v := validation.New()
	v.Check(len(ins) > 0, "inputs", "at least one input is required")
	for i, q := range ins {
		v.Check(q != nil, fmt.Sprintf("inputs[%d]", i), "queue is required")
	}
	v.Check(out != nil, "output", "is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Merge[T]{
		base:   newBase(name, "merge", buildOptions(opts)),
		ins:    append([]queue.Queue[T](nil), ins...),
		out:    out,
		closed: make([]bool, len(ins)),
	}, nil
}

// Kind reports that Merge is an operator node.
func (m *Merge[T]) Kind() graph.Kind { return graph.KindOp }

// Step takes at most one item from each input that has not ended, in
// construction order. Values are forwarded immediately; the output sentinel
// is put only after the last input's sentinel arrives.
func (m *Merge[T]) Step(ctx context.Context) (bool, error) {
	if m.ShutDown() {
		return true, nil
	}

	for i, in := range m.ins {
		if m.closed[i] {
			continue
		}
		item, ok := in.TryGet()
		if !ok {
			continue
		}
		in.Done()

		if !item.IsSentinel() {
			m.out.Put(item)
			m.routed.Add(1)
			continue
		}

		m.closed[i] = true
		m.ended++
		m.sentinelsIn.Add(1)
		if m.ended == len(m.ins) {
			m.out.Put(queue.Sentinel[T]())
			m.sentinelsOut.Add(1)
			m.state.Store(int32(StateShutDown))
			m.log.WithContext(ctx).Debug("merge shut down", logger.Fields(
				logger.FieldCount, m.routed.Load(),
			))
			return true, nil
		}
	}
	return false, nil
}

// Pending returns the number of inputs that have not delivered a sentinel.
// It must be called from the goroutine that steps the operator.
func (m *Merge[T]) Pending() int { return len(m.ins) - m.ended }

// Ready returns the notification channels of the inputs still open. Like
// Pending, it must be called from the stepping goroutine.
func (m *Merge[T]) Ready() ([]<-chan struct{}, bool) {
	open := make([]queue.Queue[T], 0, len(m.ins))
	for i, in := range m.ins {
		if !m.closed[i] {
			open = append(open, in)
		}
	}
	return graph.QueueReady(open...)
}

// Endpoints returns the IDs of the input and output queues.
func (m *Merge[T]) Endpoints() (inputs, outputs []string) {
	return graph.QueueIDs(m.ins...), graph.QueueIDs(m.out)
}
