package tracer

import (
	"fmt"
	"strings"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

// StepFormatter renders steps and bound calls as text.
type StepFormatter interface {
	GetStepText(step domain.StepInstance) string
	GetMatchText(def *binding.StepDefinition, args []any) string
	GetMethodText(method binding.Method, args []any) string
}

// DefaultFormatter writes steps the way they appear in a feature file.
type DefaultFormatter struct{}

// NewFormatter creates a DefaultFormatter.
func NewFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// GetStepText returns the keyword, the text and any doc string or table.
func (f *DefaultFormatter) GetStepText(step domain.StepInstance) string {
	keyword := step.Keyword
	if keyword == "" {
		keyword = step.Type.String()
	}

	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(step.Text)
	b.WriteString("\n")

	if step.DocString != "" {
		b.WriteString("  --- multiline step argument ---\n")
		for _, line := range strings.Split(step.DocString, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	if len(step.Table) > 0 {
		b.WriteString("  --- table step argument ---\n")
		for _, row := range step.Table {
			b.WriteString("  | " + strings.Join(row, " | ") + " |\n")
		}
	}
	return b.String()
}

// GetMatchText renders the bound method call, or the bare method when args is nil.
func (f *DefaultFormatter) GetMatchText(def *binding.StepDefinition, args []any) string {
	return f.GetMethodText(def.Method, args)
}

// GetMethodText renders "Type.Method(arg, ...)".
func (f *DefaultFormatter) GetMethodText(method binding.Method, args []any) string {
	if args == nil {
		return binding.FormatMethod(method)
	}
	rendered := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			rendered[i] = fmt.Sprintf("%q", v)
		case [][]string:
			rendered[i] = "<table>"
		default:
			rendered[i] = fmt.Sprintf("%v", v)
		}
	}
	name := method.Name()
	if method.DeclaringType() != "" {
		name = method.DeclaringType() + "." + name
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(rendered, ", "))
}
