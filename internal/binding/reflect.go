package binding

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// RuntimeMethod is a Method backed by a live Go function.
//
// A leading context.Context parameter is not part of the descriptor; it is
// supplied on Invoke. The function may return nothing or a single error.
type RuntimeMethod struct {
	typeName string
	name     string
	fn       reflect.Value
	params   []Parameter
	takesCtx bool
}

// NewRuntimeMethod describes fn. paramNames, when given, name the
// non-context parameters in order; missing names default to p0, p1, ...
func NewRuntimeMethod(typeName, name string, fn any, paramNames ...string) (*RuntimeMethod, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("binding %s: expected a func, got %T", name, fn)
	}
	t := v.Type()

	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1 && t.Out(0) == errorType:
	default:
		return nil, fmt.Errorf("binding %s: func must return nothing or error, got %s", name, t)
	}

	m := &RuntimeMethod{typeName: typeName, name: name, fn: v}
	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		m.takesCtx = true
		first = 1
	}
	for i := first; i < t.NumIn(); i++ {
		idx := i - first
		pname := fmt.Sprintf("p%d", idx)
		if idx < len(paramNames) && paramNames[idx] != "" {
			pname = paramNames[idx]
		}
		in := t.In(i)
		variadic := t.IsVariadic() && i == t.NumIn()-1
		if variadic {
			in = in.Elem()
		}
		m.params = append(m.params, Parameter{Name: pname, TypeName: in.String(), Variadic: variadic})
	}
	return m, nil
}

func (m *RuntimeMethod) DeclaringType() string { return m.typeName }
func (m *RuntimeMethod) Name() string          { return m.name }

func (m *RuntimeMethod) Parameters() []Parameter {
	return append([]Parameter(nil), m.params...)
}

// Invoke calls the function with args, which must line up with Parameters.
// Variadic parameters may receive zero or more trailing args. A panic in
// the handler is returned as an error.
func (m *RuntimeMethod) Invoke(ctx context.Context, args []any) (err error) {
	t := m.fn.Type()
	in := make([]reflect.Value, 0, t.NumIn())
	if m.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}

	first := len(in)
	fixed := t.NumIn() - first
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!t.IsVariadic() && len(args) > fixed) {
		return fmt.Errorf("%s: expected %d argument(s), got %d", FormatMethod(m), fixed, len(args))
	}

	for i, arg := range args {
		var target reflect.Type
		if i < fixed {
			target = t.In(first + i)
		} else {
			target = t.In(t.NumIn() - 1).Elem()
		}
		v, convErr := toValue(arg, target)
		if convErr != nil {
			return fmt.Errorf("%s: argument %d: %w", FormatMethod(m), i, convErr)
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%s panicked: %w", FormatMethod(m), e)
				return
			}
			err = fmt.Errorf("%s panicked: %v", FormatMethod(m), r)
		}
	}()

	out := m.fn.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func toValue(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(target), nil
	}
	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(target):
		return v, nil
	case v.Type().ConvertibleTo(target):
		return v.Convert(target), nil
	}
	return reflect.Value{}, errors.New("cannot use " + v.Type().String() + " as " + target.String())
}
