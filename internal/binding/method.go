package binding

import (
	"context"
	"fmt"
	"strings"
)

// Parameter describes one parameter of a binding method.
type Parameter struct {
	Name     string
	TypeName string
	Variadic bool
}

func (p Parameter) String() string {
	if p.Variadic {
		return fmt.Sprintf("%s: ...%s", p.Name, p.TypeName)
	}
	return fmt.Sprintf("%s: %s", p.Name, p.TypeName)
}

// Method is a language-neutral description of a candidate step handler.
// Implementations must be immutable.
type Method interface {
	DeclaringType() string
	Name() string
	Parameters() []Parameter
}

// Invoker is implemented by methods that can be called at run time.
type Invoker interface {
	Invoke(ctx context.Context, args []any) error
}

// StaticMethod is a Method harvested from source code. It cannot be invoked.
type StaticMethod struct {
	TypeName   string
	MethodName string
	Params     []Parameter
}

// NewStaticMethod creates a StaticMethod, copying params.
func NewStaticMethod(typeName, methodName string, params ...Parameter) *StaticMethod {
	return &StaticMethod{
		TypeName:   typeName,
		MethodName: methodName,
		Params:     append([]Parameter(nil), params...),
	}
}

func (m *StaticMethod) DeclaringType() string { return m.TypeName }
func (m *StaticMethod) Name() string          { return m.MethodName }

func (m *StaticMethod) Parameters() []Parameter {
	return append([]Parameter(nil), m.Params...)
}

// MethodEquals reports whether a and b have the same declaring type, name
// and parameter type sequence. Parameter names are not compared.
func MethodEquals(a, b Method) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.DeclaringType() != b.DeclaringType() || a.Name() != b.Name() {
		return false
	}
	pa, pb := a.Parameters(), b.Parameters()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i].TypeName != pb[i].TypeName || pa[i].Variadic != pb[i].Variadic {
			return false
		}
	}
	return true
}

// FormatMethod renders a method as "Type.Name(int, string)".
func FormatMethod(m Method) string {
	params := m.Parameters()
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.TypeName
		if p.Variadic {
			types[i] = "..." + p.TypeName
		}
	}
	name := m.Name()
	if m.DeclaringType() != "" {
		name = m.DeclaringType() + "." + name
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(types, ", "))
}
