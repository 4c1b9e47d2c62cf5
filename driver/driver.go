package driver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/graph"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
)

// Stats summarises a run.
type Stats struct {
	Steps    int64
	Waits    int64
	Skipped  int64
	Shutdown int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithMetrics records step metrics for every node.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithTracing creates one span per step, named "{prefix}.{node}".
func WithTracing(prefix string) Option {
	return func(s *Scheduler) { s.tracePrefix = prefix }
}

// WithName overrides the component name, "scheduler" by default.
func WithName(name string) Option {
	return func(s *Scheduler) { s.name = name }
}

// Scheduler steps every node of a graph until all have shut down.
type Scheduler struct {
	name        string
	cfg         Config
	graph       *graph.Graph
	log         *logger.Logger
	metrics     *observability.Metrics
	tracePrefix string

	steps    atomic.Int64
	waits    atomic.Int64
	skipped  atomic.Int64
	shutdown atomic.Int64

	mu      sync.Mutex
	runID   string
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// New creates a Scheduler for g. Unset config fields take their defaults.
func New(cfg Config, g *graph.Graph, opts ...Option) (*Scheduler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.InvalidConfig("graph", "graph is required")
	}

	s := &Scheduler{name: "scheduler", cfg: cfg, graph: g}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("driver")
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Stats returns the counters accumulated across runs.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Steps:    s.steps.Load(),
		Waits:    s.waits.Load(),
		Skipped:  s.skipped.Load(),
		Shutdown: s.shutdown.Load(),
	}
}

// RunID returns the ID of the current or most recent run.
func (s *Scheduler) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Run steps the graph until every node has shut down, a step fails or ctx
// is done. Nodes are left as they are when the run stops early.
func (s *Scheduler) Run(ctx context.Context) error {
	runID := uuid.NewString()
	s.mu.Lock()
	s.runID = runID
	s.mu.Unlock()

	ctx = logger.ContextWithRunID(ctx, runID)
	log := s.log.WithContext(ctx)
	nodes := s.decorate(s.graph.Ordered())

	log.Info("run started", logger.Fields(
		"mode", s.cfg.Mode,
		"strategy", s.cfg.Strategy,
		logger.FieldCount, len(nodes),
	))
	start := time.Now()

	var err error
	switch s.cfg.Strategy {
	case StrategyMultiplexed:
		err = s.runMultiplexed(ctx, nodes)
	default:
		err = s.runConcurrent(ctx, nodes)
	}

	fields := logger.MergeWithDuration(logger.Fields(
		"steps", s.steps.Load(),
		"skipped", s.skipped.Load(),
	), time.Since(start))
	if err != nil {
		log.Error("run stopped", logger.MergeWithError(fields, err))
		return err
	}
	log.Info("run completed", fields)
	return nil
}

// decorate applies the configured wrappers to every node.
func (s *Scheduler) decorate(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		if s.cfg.StepLogging {
			n = graph.WithLogging(n, s.log)
		}
		if s.metrics != nil {
			n = graph.WithMetrics(n, s.metrics)
		}
		if s.tracePrefix != "" {
			n = graph.WithTracing(n, s.tracePrefix)
		}
		out[i] = n
	}
	return out
}

func (s *Scheduler) runConcurrent(ctx context.Context, nodes []graph.Node) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range nodes {
		g.Go(func() error {
			return s.runNode(gctx, n)
		})
	}
	// The first failure cancels gctx; Wait reports that failure.
	return g.Wait()
}

// runNode steps a single node on its own goroutine.
func (s *Scheduler) runNode(ctx context.Context, n graph.Node) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := s.step(ctx, n)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		chans, canSignal := graph.ReadyOf(n)
		if err := s.idle(ctx, chans, canSignal, isPassive(n)); err != nil {
			return err
		}
	}
}

func (s *Scheduler) runMultiplexed(ctx context.Context, nodes []graph.Node) error {
	active := append([]graph.Node(nil), nodes...)
	for len(active) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining := active[:0]
		var waitOn []<-chan struct{}
		busy, canSignal := false, true
		for _, n := range active {
			done, err := s.step(ctx, n)
			if err != nil {
				return err
			}
			if done {
				continue
			}
			remaining = append(remaining, n)

			chans, ok := graph.ReadyOf(n)
			switch {
			case isPassive(n):
				busy = true
			case !ok:
				canSignal = false
			case anyClosed(chans):
				busy = true
			default:
				waitOn = append(waitOn, chans...)
			}
		}
		active = remaining

		if len(active) == 0 || busy {
			continue
		}
		if err := s.idle(ctx, waitOn, canSignal, false); err != nil {
			return err
		}
	}
	return nil
}

// step runs one Step and applies the error policy. Skipped errors are
// reported as a non-terminal step without error.
func (s *Scheduler) step(ctx context.Context, n graph.Node) (bool, error) {
	s.steps.Add(1)
	done, err := n.Step(ctx)
	if err == nil {
		if done {
			s.shutdown.Add(1)
		}
		return done, nil
	}

	if s.cfg.OnError == OnErrorSkip && !errors.IsFatal(err) {
		s.skipped.Add(1)
		s.log.WithContext(ctx).Warn("step error skipped", logger.MergeWithError(
			logger.NodeFields(n.Name(), n.Kind().String()), err,
		))
		return done, nil
	}
	return done, fmt.Errorf("node %s: %w", n.Name(), err)
}

// idle waits before the next step of nodes that have nothing to do.
// Passive nodes (no inputs to wait on, such as sources) never wait.
func (s *Scheduler) idle(ctx context.Context, chans []<-chan struct{}, canSignal, passive bool) error {
	if passive {
		return nil
	}
	if canSignal && anyClosed(chans) {
		return nil
	}

	s.waits.Add(1)
	if s.cfg.Mode == ModeNotify && canSignal {
		return awaitAny(ctx, chans, s.cfg.PollInterval)
	}
	return sleep(ctx, s.cfg.PollInterval)
}

// isPassive reports whether n has no input queues to wait on.
func isPassive(n graph.Node) bool {
	if _, ok := graph.Root(n).(graph.Awaiter); ok {
		return false
	}
	inputs, _, wired := graph.EndpointsOf(n)
	return wired && len(inputs) == 0
}
