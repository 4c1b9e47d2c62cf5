package driver

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/routekit/component"
)

var (
	_ component.Component   = (*Scheduler)(nil)
	_ component.Describable = (*Scheduler)(nil)
)

// Name returns the component name.
func (s *Scheduler) Name() string { return s.name }

// Start launches Run in the background. The run is not bound to ctx; use
// Stop to cancel it and Wait to collect its result.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
		default:
			return fmt.Errorf("scheduler %s already running", s.name)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.lastErr = nil

	go func() {
		defer close(done)
		defer cancel()
		err := s.Run(runCtx)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}()
	return nil
}

// Stop cancels a background run and waits for it to return or ctx to end.
// Nodes that had not shut down are left running.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the background run started by Start returns, and
// returns its error. It returns nil if Start was never called.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Health reports unhealthy after a failed run and degraded after one that
// was cancelled.
func (s *Scheduler) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := component.Health{Name: s.name, Status: component.StatusHealthy}
	if s.done == nil {
		h.Message = "idle"
		return h
	}

	select {
	case <-s.done:
	default:
		h.Message = "running"
		return h
	}

	switch {
	case s.lastErr == nil:
		h.Message = "completed"
	case isCancellation(s.lastErr):
		h.Status = component.StatusDegraded
		h.Message = s.lastErr.Error()
	default:
		h.Status = component.StatusUnhealthy
		h.Message = s.lastErr.Error()
	}
	return h
}

// Describe reports the scheduler for startup summaries.
func (s *Scheduler) Describe() component.Description {
	return component.Description{
		Name: s.name,
		Type: "scheduler",
		Details: fmt.Sprintf("nodes=%d mode=%s strategy=%s on_error=%s",
			len(s.graph.Nodes()), s.cfg.Mode, s.cfg.Strategy, s.cfg.OnError),
	}
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
