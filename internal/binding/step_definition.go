package binding

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/fjglira/stepbinder/internal/domain"
)

// StepDefinition pairs a step type, a pattern and a method, optionally
// restricted by scopes. Identity is the pointer: two definitions with the
// same pattern and method are distinct registrations.
type StepDefinition struct {
	ID      string
	Type    domain.StepType
	Pattern string // as declared or calculated
	Method  Method
	Scopes  []Scope

	SourceFile string // where the definition was discovered, if known
	LineNumber int

	regex *regexp.Regexp
}

// NewStepDefinition compiles pattern so that it must match the whole step text.
func NewStepDefinition(stepType domain.StepType, pattern string, method Method, scopes ...Scope) (*StepDefinition, error) {
	if method == nil {
		return nil, domain.NewError("discover", "", 0, fmt.Sprintf("step definition %q has no method", pattern), nil)
	}
	re, err := regexp.Compile(anchor(pattern))
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("discover", "", 0,
			fmt.Sprintf("invalid pattern %q on %s", pattern, FormatMethod(method)),
			"step patterns use Go RE2 syntax; lookarounds and backreferences are not supported",
			err)
	}
	return &StepDefinition{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Type:    stepType,
		Pattern: pattern,
		Method:  method,
		Scopes:  MergeScopes(scopes),
		regex:   re,
	}, nil
}

// anchor wraps p so it only accepts the full text. Existing anchors are harmless.
func anchor(p string) string {
	return "^(?:" + p + ")$"
}

// IsScoped reports whether the definition carries at least one scope.
func (d *StepDefinition) IsScoped() bool {
	return len(d.Scopes) > 0
}

// AppliesTo reports whether the scopes of d admit ctx.
func (d *StepDefinition) AppliesTo(ctx domain.StepContext) bool {
	return ScopesApply(d.Scopes, ctx)
}

// Match returns the capture groups if text matches the whole pattern.
func (d *StepDefinition) Match(text string) ([]string, bool) {
	m := d.regex.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// GroupCount is the number of capture groups in the pattern.
func (d *StepDefinition) GroupCount() int {
	return d.regex.NumSubexp()
}

func (d *StepDefinition) String() string {
	s := fmt.Sprintf("[%s(%q)] %s", d.Type, d.Pattern, FormatMethod(d.Method))
	if len(d.Scopes) > 0 {
		scopes := make([]string, len(d.Scopes))
		for i, sc := range d.Scopes {
			scopes[i] = sc.String()
		}
		s += " scope: " + strings.Join(scopes, " | ")
	}
	return s
}
