// Package route provides the fan-out and fan-in operators that move items
// between queues.
//
// Split classifies every item on its input queue with a predicate and
// forwards it to the output queue registered for the resulting key. Merge
// forwards items from N input queues to a single output queue.
//
// Both operators follow the same end-of-stream protocol: a sentinel item
// (see queue.Sentinel) is the last item a producer puts on a queue. Split
// copies the sentinel to each distinct output queue; Merge emits exactly one
// sentinel after every input has delivered its own. Operators are stepped
// by a driver:
//
//	split, err := route.NewSplit("parity", isEven, in, route.Routes[bool, int]{
//		true:  evens,
//		false: odds,
//	})
//	for {
//		done, err := split.Step(ctx)
//		...
//	}
//
// Step never blocks: it takes at most one item per input queue with
// TryGet and returns immediately when there is nothing to do.
package route
