package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/phishscan/internal/model"
)

// ErrStepPanicked wraps a panic recovered from a step.
var ErrStepPanicked = errors.New("step panicked")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step against report.
	// Collaborator failures are recorded in the report and Do returns nil;
	// a returned error is an unexpected fault.
	Do(ctx context.Context, report *model.Report) error

	// Name returns the step's name for logging and the performed steps list.
	Name() string
}

// FinalStep is implemented by steps that still run over the partial report
// after the analysis context has ended, when the pipeline continues on error.
type FinalStep interface {
	Step

	// Final reports whether the step runs after cancellation.
	Final() bool
}

func isFinal(step Step) bool {
	f, ok := step.(FinalStep)
	return ok && f.Final()
}

// Pipeline orchestrates the execution of steps over a single report.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing after a failed step.
	continueOnError bool

	// clock supplies the analysis reference time.
	clock func() time.Time

	// timeout is the ceiling for one Execute call. Zero means none.
	timeout time.Duration
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails. The first failure is still recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithClock sets the source of the analysis reference time.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithTimeout bounds the whole analysis.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = timeout
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Analyze creates a report for rawURL and runs every step over it.
// The report is always returned; faults are recorded in Report.Error.
func (p *Pipeline) Analyze(ctx context.Context, rawURL string) *model.Report {
	report := model.NewReport(rawURL)
	_ = p.Execute(ctx, report) //nolint:errcheck // error is stored in report
	return report
}

// Execute runs all steps in sequence. It stamps AnalyzedAt from the
// pipeline clock when the report has none.
//
// Returns the first error encountered if continueOnError is false, or nil
// once every step has run. Once ctx ends only final steps run, and the
// context error is returned. Errors are always recorded in the report.
func (p *Pipeline) Execute(ctx context.Context, report *model.Report) error {
	if report.AnalyzedAt.IsZero() {
		report.AnalyzedAt = p.clock().UTC()
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cancelled := false
	for _, step := range p.steps {
		stepCtx := ctx
		if err := ctx.Err(); err != nil {
			if !cancelled {
				p.logger.Warn("analysis cancelled",
					"step", step.Name(),
					"url", report.URL,
					"reason", err,
				)
				report.SetError(err)
				cancelled = true
			}
			if !p.continueOnError {
				return err
			}
			if !isFinal(step) {
				continue
			}
			stepCtx = context.WithoutCancel(ctx)
		}

		p.logger.Debug("executing step", "step", step.Name(), "url", report.URL)

		if err := runStep(stepCtx, step, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", report.URL,
				"error", err,
			)
			report.SetError(err)

			if !p.continueOnError {
				return err
			}
			continue
		}

		report.AddPerformedStep(step.Name())
	}

	if cancelled {
		return ctx.Err()
	}
	return nil
}

// runStep executes step and converts a panic into an error.
func runStep(ctx context.Context, step Step, report *model.Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrStepPanicked, step.Name(), r)
		}
	}()
	return step.Do(ctx, report)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
