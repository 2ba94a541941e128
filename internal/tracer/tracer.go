// Package tracer turns step outcomes into human-readable report events.
package tracer

import (
	"fmt"
	"strings"
	"time"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/skeleton"
)

// Listener receives trace output. It has no influence on matching.
type Listener interface {
	WriteTestOutput(message string)
	WriteToolOutput(format string, args ...any)
}

// Tracer reports what happens to each step.
type Tracer interface {
	TraceStep(step domain.StepInstance)
	TraceWarning(text string)
	TraceStepDone(def *binding.StepDefinition, args []any, duration time.Duration)
	TraceStepSkipped()
	TraceStepPending(def *binding.StepDefinition, args []any)
	TraceBindingError(err error)
	TraceError(err error)
	TraceNoMatchingStepDefinition(step domain.StepInstance, language domain.ProgrammingLanguage, matchesWithoutScopeCheck []*binding.StepDefinition) error
	TraceAmbiguousStepDefinition(step domain.StepInstance, candidates []*binding.StepDefinition)
	TraceDuration(elapsed time.Duration, method binding.Method, args []any)
	TraceDurationText(elapsed time.Duration, text string)
}

// TestTracer is the default Tracer.
type TestTracer struct {
	listener  Listener
	formatter StepFormatter
	skeletons *skeleton.Registry
}

// NewTracer creates a TestTracer.
func NewTracer(listener Listener, formatter StepFormatter, skeletons *skeleton.Registry) *TestTracer {
	return &TestTracer{
		listener:  listener,
		formatter: formatter,
		skeletons: skeletons,
	}
}

func (t *TestTracer) TraceStep(step domain.StepInstance) {
	t.listener.WriteTestOutput(strings.TrimRight(t.formatter.GetStepText(step), "\n"))
}

func (t *TestTracer) TraceWarning(text string) {
	t.listener.WriteToolOutput("warning: %s", text)
}

func (t *TestTracer) TraceStepDone(def *binding.StepDefinition, args []any, duration time.Duration) {
	t.listener.WriteToolOutput("done: %s (%.1fs)", t.formatter.GetMatchText(def, args), duration.Seconds())
}

func (t *TestTracer) TraceStepSkipped() {
	t.listener.WriteToolOutput("skipped because of previous errors")
}

func (t *TestTracer) TraceStepPending(def *binding.StepDefinition, args []any) {
	t.listener.WriteToolOutput("pending: %s", t.formatter.GetMatchText(def, args))
}

func (t *TestTracer) TraceBindingError(err error) {
	t.listener.WriteToolOutput("binding error: %s", err.Error())
}

func (t *TestTracer) TraceError(err error) {
	t.listener.WriteToolOutput("error: %s", err.Error())
}

// TraceNoMatchingStepDefinition offers a skeleton for step. When
// matchesWithoutScopeCheck is non-empty the step is reported as a scope
// mismatch first. A missing provider for language is traced and returned.
func (t *TestTracer) TraceNoMatchingStepDefinition(step domain.StepInstance, language domain.ProgrammingLanguage, matchesWithoutScopeCheck []*binding.StepDefinition) error {
	code, err := t.skeletons.Generate(language, step)
	if err != nil {
		t.TraceError(err)
		return err
	}

	var message strings.Builder
	if len(matchesWithoutScopeCheck) == 0 {
		message.WriteString("No matching step definition found for the step. Use the following code to create one:\n")
	} else {
		texts := make([]string, len(matchesWithoutScopeCheck))
		for i, def := range matchesWithoutScopeCheck {
			texts[i] = t.formatter.GetMatchText(def, nil)
		}
		t.listener.WriteToolOutput("No matching step definition found for the step. There are matching step definitions, but none of them have matching scope for this step: %s.",
			strings.Join(texts, ", "))
		message.WriteString("Change the scope or use the following code to create a new step definition:\n")
	}
	message.WriteString(skeleton.Indent(skeleton.CodeIndent, code))

	t.listener.WriteToolOutput("%s", message.String())
	return nil
}

func (t *TestTracer) TraceAmbiguousStepDefinition(step domain.StepInstance, candidates []*binding.StepDefinition) {
	texts := make([]string, len(candidates))
	for i, def := range candidates {
		texts[i] = t.formatter.GetMatchText(def, nil)
	}
	t.listener.WriteToolOutput("binding error: Ambiguous step definitions found for step '%s %s': %s",
		step.Type, step.Text, strings.Join(texts, ", "))
}

func (t *TestTracer) TraceDuration(elapsed time.Duration, method binding.Method, args []any) {
	t.listener.WriteToolOutput("duration: %s: %.1fs", t.formatter.GetMethodText(method, args), elapsed.Seconds())
}

func (t *TestTracer) TraceDurationText(elapsed time.Duration, text string) {
	t.listener.WriteToolOutput("duration: %s: %.1fs", text, elapsed.Seconds())
}

// Recorder is a Listener that keeps every line, for tests and summaries.
type Recorder struct {
	TestOutput []string
	ToolOutput []string
}

func (r *Recorder) WriteTestOutput(message string) {
	r.TestOutput = append(r.TestOutput, message)
}

func (r *Recorder) WriteToolOutput(format string, args ...any) {
	r.ToolOutput = append(r.ToolOutput, fmt.Sprintf(format, args...))
}
