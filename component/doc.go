// Package component defines the lifecycle contract shared by the long-lived
// parts of a routekit process, such as a scheduler or a telemetry exporter,
// and a Registry that starts them in order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Waiter: components that finish on their own (a scheduler run)
//   - Describable: one-line summaries for startup logs
package component
