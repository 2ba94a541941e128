package runner

import (
	"fmt"
	"time"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

// StepStatus is the outcome of one step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepPending
	StepSkipped
	StepUndefined
	StepScopeMismatch
	StepAmbiguous
	StepBindingError
)

func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepPending:
		return "pending"
	case StepSkipped:
		return "skipped"
	case StepUndefined:
		return "undefined"
	case StepScopeMismatch:
		return "scope mismatch"
	case StepAmbiguous:
		return "ambiguous"
	case StepBindingError:
		return "binding error"
	default:
		return fmt.Sprintf("StepStatus(%d)", int(s))
	}
}

// blocks reports whether the status stops the rest of the scenario.
func (s StepStatus) blocks() bool {
	return s != StepPassed && s != StepSkipped
}

type StepResult struct {
	Step     domain.StepInstance
	Status   StepStatus
	Binding  *binding.StepDefinition
	Args     []any
	Duration time.Duration
	Err      error
}

type ScenarioResult struct {
	Path     string
	Feature  string
	Title    string
	Line     int
	Steps    []StepResult
	Duration time.Duration
}

// Status is the first blocking step status, or StepPassed.
func (s ScenarioResult) Status() StepStatus {
	for _, st := range s.Steps {
		if st.Status.blocks() {
			return st.Status
		}
	}
	return StepPassed
}

// Report summarizes a run.
type Report struct {
	Features  int
	Scenarios []ScenarioResult
	Counts    map[StepStatus]int

	// Undefined steps, including scope mismatches, in encounter order.
	Undefined []domain.StepInstance
	// Skeleton is one binding class covering every undefined step.
	Skeleton string
}

func newReport() *Report {
	return &Report{Counts: make(map[StepStatus]int)}
}

// Steps is the total number of steps run.
func (r *Report) Steps() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Failed reports whether any step did not pass. Skipped steps alone do not fail a run.
func (r *Report) Failed() bool {
	for status, c := range r.Counts {
		if c > 0 && status.blocks() {
			return true
		}
	}
	return false
}

// Summary renders the counts in a fixed order, e.g.
// "3 scenario(s), 12 step(s): 10 passed, 1 undefined, 1 skipped".
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d scenario(s), %d step(s)", len(r.Scenarios), r.Steps())
	sep := ": "
	for status := StepPassed; status <= StepBindingError; status++ {
		if c := r.Counts[status]; c > 0 {
			s += fmt.Sprintf("%s%d %s", sep, c, status)
			sep = ", "
		}
	}
	return s
}
