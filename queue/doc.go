// Package queue defines the queue contract routing operators read from and
// write to, the Item envelope that carries either a value or the
// end-of-stream sentinel, and Memory, a thread-safe in-process queue.
//
// A sentinel is put on a queue exactly once, after the last value, to tell
// its consumer that nothing more will arrive. Every removed item is
// acknowledged with Done so that Join can report when a queue, sentinel
// included, has been fully consumed.
//
//	q := queue.NewMemory[int]("numbers")
//	q.Put(queue.Value(1))
//	q.Put(queue.Sentinel[int]())
//
//	item, ok := q.TryGet()
//	q.Done()
package queue
