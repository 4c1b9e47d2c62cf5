// Package errors provides the structured error type shared by routekit
// packages. Each AppError carries a machine-readable code so drivers can
// tell a halting misconfiguration apart from a failure on a single item.
package errors
