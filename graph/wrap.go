package graph

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
)

// WithTracing wraps a Node with OpenTelemetry span creation.
// Each step creates a span named "{prefix}.{nodeName}".
func WithTracing(node Node, prefix string) Node {
	return &tracingNode{inner: node, prefix: prefix}
}

type tracingNode struct {
	inner  Node
	prefix string
}

func (n *tracingNode) Name() string { return n.inner.Name() }
func (n *tracingNode) Kind() Kind   { return n.inner.Kind() }
func (n *tracingNode) Unwrap() Node { return n.inner }

func (n *tracingNode) Step(ctx context.Context) (bool, error) {
	ctx, span := observability.StartStep(ctx, n.prefix+"."+n.inner.Name(), n.inner.Name(), n.inner.Kind().String())
	done, err := n.inner.Step(ctx)
	observability.EndStep(span, done, err)
	return done, err
}

// WithMetrics wraps a Node with step metrics. The shutdown transition is
// recorded once, no matter how often the node is stepped afterwards.
func WithMetrics(node Node, metrics *observability.Metrics) Node {
	return &metricsNode{inner: node, metrics: metrics}
}

type metricsNode struct {
	inner    Node
	metrics  *observability.Metrics
	shutdown atomic.Bool
}

func (n *metricsNode) Name() string { return n.inner.Name() }
func (n *metricsNode) Kind() Kind   { return n.inner.Kind() }
func (n *metricsNode) Unwrap() Node { return n.inner }

func (n *metricsNode) Step(ctx context.Context) (bool, error) {
	start := time.Now()
	done, err := n.inner.Step(ctx)
	duration := time.Since(start)

	name, kind := n.inner.Name(), n.inner.Kind().String()
	status := observability.StatusOK
	switch {
	case err != nil:
		status = observability.StatusError
		n.metrics.RecordError(ctx, name, string(errorCode(err)))
	case done:
		status = observability.StatusShutdown
		if n.shutdown.CompareAndSwap(false, true) {
			n.metrics.RecordShutdown(ctx, name, kind)
		}
	}
	n.metrics.RecordStep(ctx, name, kind, status, duration)
	return done, err
}

// WithLogging wraps a Node with step logging. Idle steps are not logged.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{inner: node, log: log}
}

type loggingNode struct {
	inner    Node
	log      *logger.Logger
	shutdown atomic.Bool
}

func (n *loggingNode) Name() string { return n.inner.Name() }
func (n *loggingNode) Kind() Kind   { return n.inner.Kind() }
func (n *loggingNode) Unwrap() Node { return n.inner }

func (n *loggingNode) Step(ctx context.Context) (bool, error) {
	start := time.Now()
	done, err := n.inner.Step(ctx)
	duration := time.Since(start)

	if err == nil && !done {
		return done, err
	}

	log := n.log.WithContext(ctx).ForNode(n.inner.Name(), n.inner.Kind().String())
	fields := logger.MergeWithDuration(nil, duration)
	if err != nil {
		fields[logger.FieldStatus] = string(errorCode(err))
		log.Error("node step failed", logger.MergeWithError(fields, err))
		return done, err
	}
	if n.shutdown.CompareAndSwap(false, true) {
		log.Debug("node shut down", fields)
	}
	return done, err
}

func errorCode(err error) errors.ErrorCode {
	if appErr, ok := errors.As(err); ok {
		return appErr.Code
	}
	return errors.ErrCodeInternal
}
