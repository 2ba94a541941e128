package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/matcher"
	"github.com/fjglira/stepbinder/internal/skeleton"
	"github.com/fjglira/stepbinder/internal/tracer"
)

// Options control how steps are executed and reported.
type Options struct {
	Language          domain.ProgrammingLanguage
	DryRun            bool
	MinTracedDuration time.Duration // zero disables duration reports
	ShowSkeletons     bool
}

// Runner executes loaded features step by step.
type Runner struct {
	engine    *matcher.Engine
	tracer    tracer.Tracer
	skeletons *skeleton.Registry
	opts      Options
	log       *logrus.Logger
	now       func() time.Time
}

// New creates a Runner.
func New(engine *matcher.Engine, tr tracer.Tracer, skeletons *skeleton.Registry, opts Options, log *logrus.Logger) *Runner {
	return &Runner{
		engine:    engine,
		tracer:    tr,
		skeletons: skeletons,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// Run executes every scenario of features. Step failures are recorded in
// the report; the returned error is reserved for cancellation and
// configuration problems such as a missing skeleton provider.
func (r *Runner) Run(ctx context.Context, features []LoadedFeature) (*Report, error) {
	report := newReport()
	for _, lf := range features {
		report.Features++
		for _, pickle := range lf.Feature.Pickles() {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			r.log.Debugf("Scenario: %s (%s:%d)", pickle.Title, lf.Path, pickle.Line)

			start := r.now()
			result := ScenarioResult{
				Path:    lf.Path,
				Feature: pickle.FeatureName,
				Title:   pickle.Title,
				Line:    pickle.Line,
			}
			blocked := false
			for _, step := range pickle.StepInstances(lf.Path) {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				sr, err := r.runStep(ctx, step, blocked)
				if err != nil {
					return report, err
				}
				if sr.Status.blocks() {
					blocked = true
				}
				if sr.Status == StepUndefined || sr.Status == StepScopeMismatch {
					report.Undefined = append(report.Undefined, step)
				}
				report.Counts[sr.Status]++
				result.Steps = append(result.Steps, sr)
			}
			result.Duration = r.now().Sub(start)
			if r.traceable(result.Duration) {
				r.tracer.TraceDurationText(result.Duration, "Scenario: "+pickle.Title)
			}
			report.Scenarios = append(report.Scenarios, result)
		}
	}

	if len(report.Undefined) > 0 {
		code, err := r.skeletons.Generate(r.opts.Language, report.Undefined...)
		if err != nil {
			return report, err
		}
		report.Skeleton = code
	}
	r.log.Infof("Run complete: %s", report.Summary())
	return report, nil
}

// runStep matches and, unless blocked by an earlier step, executes step.
// Undefined and out-of-scope steps are reported even when blocked, so their
// skeletons are offered in one run.
func (r *Runner) runStep(ctx context.Context, step domain.StepInstance, blocked bool) (StepResult, error) {
	r.tracer.TraceStep(step)
	sr := StepResult{Step: step}

	match, err := r.engine.Match(step)
	if err != nil {
		sr.Binding = match.Binding
		sr.Err = err
		if blocked {
			sr.Status = StepSkipped
			r.tracer.TraceStepSkipped()
			return sr, nil
		}
		sr.Status = StepBindingError
		r.tracer.TraceBindingError(err)
		return sr, nil
	}

	switch match.Status {
	case matcher.Undefined, matcher.ScopeMismatch:
		sr.Status = StepUndefined
		kind := domain.KindUndefined
		if match.Status == matcher.ScopeMismatch {
			sr.Status = StepScopeMismatch
			kind = domain.KindScopeMismatch
		}
		sr.Err = domain.NewKindError(kind, "match", fmt.Sprintf("no step definition for %q", step.Text), nil)
		if !r.opts.ShowSkeletons {
			r.tracer.TraceError(sr.Err)
			return sr, nil
		}
		if err := r.tracer.TraceNoMatchingStepDefinition(step, r.opts.Language, match.Candidates); err != nil {
			return sr, err
		}
		return sr, nil

	case matcher.Ambiguous:
		if blocked {
			sr.Status = StepSkipped
			r.tracer.TraceStepSkipped()
			return sr, nil
		}
		sr.Status = StepAmbiguous
		sr.Err = domain.NewKindError(domain.KindAmbiguous, "match",
			fmt.Sprintf("%d step definitions match %q", len(match.Candidates), step.Text), nil)
		r.tracer.TraceAmbiguousStepDefinition(step, match.Candidates)
		return sr, nil
	}

	sr.Binding = match.Binding
	sr.Args = match.Values
	if blocked {
		sr.Status = StepSkipped
		r.tracer.TraceStepSkipped()
		return sr, nil
	}

	inv, ok := match.Binding.Method.(binding.Invoker)
	if r.opts.DryRun || !ok {
		sr.Status = StepPassed
		r.tracer.TraceStepDone(match.Binding, match.Values, 0)
		return sr, nil
	}

	start := r.now()
	err = inv.Invoke(ctx, match.Values)
	sr.Duration = r.now().Sub(start)
	switch {
	case errors.Is(err, domain.ErrPending):
		sr.Status = StepPending
		sr.Err = err
		r.tracer.TraceStepPending(match.Binding, match.Values)
	case err != nil:
		sr.Status = StepFailed
		sr.Err = err
		r.tracer.TraceError(err)
	default:
		sr.Status = StepPassed
		r.tracer.TraceStepDone(match.Binding, match.Values, sr.Duration)
	}
	if r.traceable(sr.Duration) {
		r.tracer.TraceDuration(sr.Duration, match.Binding.Method, match.Values)
	}
	return sr, nil
}

func (r *Runner) traceable(d time.Duration) bool {
	return r.opts.MinTracedDuration > 0 && d >= r.opts.MinTracedDuration
}
