package graph

import (
	"context"

	"github.com/kbukum/routekit/queue"
)

// Kind discriminates node roles in a graph.
type Kind string

const (
	KindSource Kind = "source"
	KindOp     Kind = "op"
	KindSink   Kind = "sink"
)

func (k Kind) String() string { return string(k) }

// Node is the unit a driver steps.
type Node interface {
	Name() string
	Kind() Kind
	// Step performs at most a bounded amount of work without blocking and
	// reports whether the node has shut down. Once it reports true, later
	// calls have no side effects and keep reporting true.
	Step(ctx context.Context) (bool, error)
}

// Awaiter is implemented by nodes whose progress depends on their input
// queues. Ready returns channels that are closed while an input holds an
// item; ok is false when some input cannot signal and the node must be
// polled. Ready is called from the goroutine that steps the node.
type Awaiter interface {
	Ready() (chans []<-chan struct{}, ok bool)
}

// Wired is implemented by nodes that expose the IDs of the queues they
// consume from and produce to.
type Wired interface {
	Endpoints() (inputs, outputs []string)
}

// Wrapper is implemented by decorators around a Node.
type Wrapper interface {
	Unwrap() Node
}

// Root strips every wrapper from n.
func Root(n Node) Node {
	for {
		w, ok := n.(Wrapper)
		if !ok {
			return n
		}
		n = w.Unwrap()
	}
}

// ReadyOf returns the readiness channels of n's innermost node. ok is false
// when the node cannot signal readiness and must be polled.
func ReadyOf(n Node) (chans []<-chan struct{}, ok bool) {
	a, ok := Root(n).(Awaiter)
	if !ok {
		return nil, false
	}
	return a.Ready()
}

// EndpointsOf returns the queue IDs of n's innermost node.
func EndpointsOf(n Node) (inputs, outputs []string, ok bool) {
	w, ok := Root(n).(Wired)
	if !ok {
		return nil, nil, false
	}
	inputs, outputs = w.Endpoints()
	return inputs, outputs, true
}

// QueueIDs returns the IDs of queues that expose one.
func QueueIDs[T any](qs ...queue.Queue[T]) []string {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		if idq, ok := q.(queue.Identified); ok {
			ids = append(ids, idq.ID())
		}
	}
	return ids
}

// QueueReady returns the Notify channels of qs. ok is false if any queue is
// not a queue.Notifier, in which case callers fall back to polling.
func QueueReady[T any](qs ...queue.Queue[T]) (chans []<-chan struct{}, ok bool) {
	chans = make([]<-chan struct{}, 0, len(qs))
	for _, q := range qs {
		n, isNotifier := q.(queue.Notifier)
		if !isNotifier {
			return nil, false
		}
		chans = append(chans, n.Notify())
	}
	return chans, true
}
