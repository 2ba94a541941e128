package discovery

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unicode"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/stepregex"
)

// ScopedBinding is implemented by receivers whose steps are all scoped.
type ScopedBinding interface {
	StepScopes() []binding.Scope
}

// PatternProvider is implemented by receivers that pin the pattern of some
// of their methods instead of deriving it from the method name.
type PatternProvider interface {
	StepPatterns() map[string]string
}

// Runtime registers live Go functions as step definitions.
type Runtime struct {
	reg  *binding.Registry
	calc *stepregex.Calculator
}

// NewRuntime creates a Runtime registering into reg.
func NewRuntime(reg *binding.Registry) *Runtime {
	return &Runtime{reg: reg, calc: stepregex.NewCalculator()}
}

func (r *Runtime) Given(pattern string, fn any, scopes ...binding.Scope) error {
	return r.add([]domain.StepType{domain.Given}, pattern, fn, scopes)
}

func (r *Runtime) When(pattern string, fn any, scopes ...binding.Scope) error {
	return r.add([]domain.StepType{domain.When}, pattern, fn, scopes)
}

func (r *Runtime) Then(pattern string, fn any, scopes ...binding.Scope) error {
	return r.add([]domain.StepType{domain.Then}, pattern, fn, scopes)
}

// Step registers fn for every step type.
func (r *Runtime) Step(pattern string, fn any, scopes ...binding.Scope) error {
	return r.add(domain.StepTypes, pattern, fn, scopes)
}

func (r *Runtime) add(types []domain.StepType, pattern string, fn any, scopes []binding.Scope) error {
	if pattern == "" {
		return domain.NewErrorWithSuggestion("discover", "", 0, "empty step pattern",
			"pass a regular expression, or use Receiver to derive patterns from method names", nil)
	}
	method, err := binding.NewRuntimeMethod("", funcName(fn), fn)
	if err != nil {
		return domain.NewError("discover", "", 0, "invalid step handler", err)
	}
	for _, t := range types {
		def, err := binding.NewStepDefinition(t, pattern, method, scopes...)
		if err != nil {
			return err
		}
		if err := r.reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Receiver registers every exported method of recv whose name starts with
// Given, When or Then. It returns the number of definitions added.
func (r *Runtime) Receiver(recv any, scopes ...binding.Scope) (int, error) {
	v := reflect.ValueOf(recv)
	t := v.Type()
	typeName := strings.TrimLeft(t.String(), "*")
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		typeName = typeName[i+1:]
	}

	var classScopes []binding.Scope
	if sb, ok := recv.(ScopedBinding); ok {
		classScopes = sb.StepScopes()
	}
	all := binding.MergeScopes(classScopes, scopes)

	var pinned map[string]string
	if pp, ok := recv.(PatternProvider); ok {
		pinned = pp.StepPatterns()
	}

	added := 0
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		stepType, ok := stepTypeOf(m.Name)
		if !ok {
			continue
		}
		method, err := binding.NewRuntimeMethod(typeName, m.Name, v.Method(i).Interface())
		if err != nil {
			return added, domain.NewError("discover", "", 0, fmt.Sprintf("invalid step method %s.%s", typeName, m.Name), err)
		}
		pattern := pinned[m.Name]
		if pattern == "" {
			pattern = r.calc.Calculate(stepType, method)
		}
		def, err := binding.NewStepDefinition(stepType, pattern, method, all...)
		if err != nil {
			return added, err
		}
		if err := r.reg.Register(def); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// stepTypeOf reads the step type from a method name prefix. The prefix must
// end the name or be followed by an upper-case letter, digit or underscore.
func stepTypeOf(name string) (domain.StepType, bool) {
	for _, t := range domain.StepTypes {
		prefix := t.String()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := []rune(name[len(prefix):])
		if len(rest) == 0 || rest[0] == '_' || unicode.IsUpper(rest[0]) || unicode.IsDigit(rest[0]) {
			return t, true
		}
	}
	return 0, false
}

// funcName returns the short name of a function value, "func1" for literals.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
