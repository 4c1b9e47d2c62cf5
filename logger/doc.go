// Package logger provides structured logging for routekit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying routing fields (node, kind, queue,
// run ID).
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("driver")
//	log.Info("node shut down", logger.Fields(logger.FieldNode, "splitter"))
package logger
