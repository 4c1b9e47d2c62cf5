// Package driver steps the nodes of a graph until every one of them has
// shut down.
//
// Two settings shape a run. The strategy decides who steps the nodes:
// "concurrent" gives every node its own goroutine, "multiplexed" steps all
// of them round-robin from one goroutine in level order. The mode decides
// how an idle node waits: "poll" sleeps for the poll interval, "notify"
// sleeps until one of its input queues receives an item, with the poll
// interval as a fallback for queues that cannot signal.
//
// A Scheduler is also a component.Component, so it can be started and
// stopped by a component.Registry alongside other infrastructure.
package driver
