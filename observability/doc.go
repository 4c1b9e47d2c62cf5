// Package observability exports traces and metrics of stepped nodes over
// OTLP/HTTP.
//
// Telemetry is a component that owns both providers:
//
//	tel := observability.NewTelemetry(cfg, "routedemo", version, env)
//	registry.Register(tel)
//	metrics, _ := tel.Metrics()
//
// Each step gets one span:
//
//	ctx, span := observability.StartStep(ctx, "routekit.split", "split", "op")
//	done, err := node.Step(ctx)
//	observability.EndStep(span, done, err)
package observability
