// Package graph describes the nodes a driver steps and how they are wired.
//
// Every node kind (source, op, sink) shares one contract: Step performs a
// bounded amount of queue work and reports whether the node has shut down.
// A Graph checks the wiring (unique names, at most one consumer per queue,
// no cycles) and groups nodes into levels so that producers are stepped
// before their consumers.
//
// Wrappers add logging, metrics and tracing around a node without hiding
// the optional Awaiter and Wired interfaces of the node they wrap.
package graph
