// Package stream connects pull-based iterators to queues.
//
// A Source node drains an Iterator into a queue and closes the stream with
// a sentinel. A Sink node hands every value on a queue to a callback until
// the sentinel arrives. Iter and Collect read a queue directly, blocking
// until end-of-stream, which is convenient at the edges of a graph and in
// tests:
//
//	in := queue.NewMemory[int]("numbers")
//	src := stream.NewSource("numbers", stream.FromSlice([]int{1, 2, 3}), in)
//	...
//	values, err := stream.Collect(ctx, out)
package stream
