// Package matcher resolves step instances to registered step definitions.
package matcher

import (
	"fmt"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

// Status classifies a match attempt.
type Status int

const (
	// Matched means exactly one definition applies.
	Matched Status = iota
	// Ambiguous means two or more equally specific definitions apply.
	Ambiguous
	// ScopeMismatch means patterns matched but no scope admitted the step.
	ScopeMismatch
	// Undefined means no pattern matched at all.
	Undefined
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case ScopeMismatch:
		return "scope mismatch"
	case Undefined:
		return "undefined"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of matching one step.
type Result struct {
	Status Status
	Step   domain.StepInstance

	// Set when Status is Matched.
	Binding   *binding.StepDefinition
	Arguments []string // capture groups, in order
	Values    []any    // converted arguments ready for the handler

	// Tied definitions when Ambiguous; definitions rejected by scope when ScopeMismatch.
	Candidates []*binding.StepDefinition
}

// Engine matches steps against a frozen binding source. It is safe for
// concurrent use as long as the source is not modified.
type Engine struct {
	source    binding.Source
	converter *Converter
}

// NewEngine creates an Engine. A nil converter uses the built-in conversions.
func NewEngine(source binding.Source, converter *Converter) *Engine {
	if converter == nil {
		converter = NewConverter()
	}
	return &Engine{source: source, converter: converter}
}

// Match finds the definition for step. A non-nil error is always a
// KindConversion *domain.Error; the returned Result then still names the
// matched binding and its raw arguments.
func (e *Engine) Match(step domain.StepInstance) (*Result, error) {
	type candidate struct {
		def  *binding.StepDefinition
		args []string
	}

	var applies, ignored []candidate
	for _, def := range e.source.BindingsFor(step.Type) {
		args, ok := def.Match(step.Text)
		if !ok {
			continue
		}
		if def.AppliesTo(step.Context) {
			applies = append(applies, candidate{def, args})
		} else {
			ignored = append(ignored, candidate{def, args})
		}
	}

	result := &Result{Step: step}
	switch {
	case len(applies) == 0 && len(ignored) > 0:
		result.Status = ScopeMismatch
		for _, c := range ignored {
			result.Candidates = append(result.Candidates, c.def)
		}
		return result, nil
	case len(applies) == 0:
		result.Status = Undefined
		return result, nil
	}

	if len(applies) > 1 {
		var scoped []candidate
		for _, c := range applies {
			if c.def.IsScoped() {
				scoped = append(scoped, c)
			}
		}
		if len(scoped) > 0 {
			applies = scoped
		}
	}

	if len(applies) > 1 {
		result.Status = Ambiguous
		for _, c := range applies {
			result.Candidates = append(result.Candidates, c.def)
		}
		return result, nil
	}

	result.Status = Matched
	result.Binding = applies[0].def
	result.Arguments = applies[0].args

	values, err := e.convertArguments(step, applies[0].def, applies[0].args)
	if err != nil {
		return result, err
	}
	result.Values = values
	return result, nil
}

func (e *Engine) convertArguments(step domain.StepInstance, def *binding.StepDefinition, args []string) ([]any, error) {
	var params []binding.Parameter
	for _, p := range def.Method.Parameters() {
		if !p.Variadic {
			params = append(params, p)
		}
	}

	multiline := multilineArgument(step)
	if multiline != nil && len(params) == len(args) {
		// handler ignores the doc string or table
		multiline = nil
	}
	expected := len(args)
	if multiline != nil {
		expected++
	}
	if len(params) != expected {
		return nil, domain.NewKindError(domain.KindConversion, "match",
			fmt.Sprintf("parameter count mismatch for %s: pattern %q yields %d argument(s), method takes %d",
				binding.FormatMethod(def.Method), def.Pattern, expected, len(params)), nil)
	}

	values := make([]any, 0, expected)
	for i, arg := range args {
		v, err := e.converter.Convert(arg, params[i].TypeName)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if multiline != nil {
		values = append(values, multiline)
	}
	return values, nil
}

// multilineArgument returns the doc string or table attached to step, or nil.
func multilineArgument(step domain.StepInstance) any {
	switch {
	case step.Table != nil:
		return step.Table
	case step.DocString != "":
		return step.DocString
	}
	return nil
}
