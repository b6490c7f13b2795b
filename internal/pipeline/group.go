package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishscan/internal/model"
)

// GroupStep runs independent steps concurrently over the same report.
//
// The children must write disjoint sections of the report. A failing or
// panicking child does not cancel its siblings; the group returns the
// first failure after all of them have finished.
type GroupStep struct {
	name   string
	steps  []Step
	logger *slog.Logger
}

// NewGroupStep creates a group step.
func NewGroupStep(name string, steps []Step, logger *slog.Logger) *GroupStep {
	return &GroupStep{name: name, steps: steps, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *GroupStep) Name() string {
	return s.name
}

// Steps returns the child steps.
func (s *GroupStep) Steps() []Step {
	return s.steps
}

// Do executes every child step and waits for all of them.
// Completed children are recorded as performed steps in declaration order.
func (s *GroupStep) Do(ctx context.Context, report *model.Report) error {
	failed := make([]error, len(s.steps))

	var g errgroup.Group
	for i, step := range s.steps {
		g.Go(func() error {
			if err := runStep(ctx, step, report); err != nil {
				s.logger.Error("step failed", "step", step.Name(), "url", report.URL, "error", err)
				failed[i] = err
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	for i, step := range s.steps {
		if failed[i] == nil {
			report.AddPerformedStep(step.Name())
		}
	}
	return err
}
