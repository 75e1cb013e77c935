package spy

import (
	"fmt"
	"reflect"
)

type policyKind int

const (
	passThrough policyKind = iota
	fixedReturn
	computedReturn
	raise
	customImplementation
)

// policy decides the outcome of an intercepted call.
type policy struct {
	kind    policyKind
	values  []any
	compute func(args []any) []any
	err     error
	errFunc func(args []any) error
	impl    reflect.Value
}

func (p policy) String() string {
	switch p.kind {
	case fixedReturn:
		return fmt.Sprintf("return %v", p.values)
	case computedReturn:
		return "compute"
	case raise:
		if p.errFunc != nil {
			return "raise func"
		}

		return fmt.Sprintf("raise %v", p.err)
	case customImplementation:
		if !p.impl.IsValid() {
			return "call nil"
		}

		return "call " + p.impl.Type().String()
	}

	return "pass through"
}

var errorType = reflect.TypeFor[error]()

// results builds the return values of fnType from values, filling missing
// trailing values with zeros. Values that do not fit panic.
func results(fnType reflect.Type, values []any) []reflect.Value {
	out, err := buildResults(fnType, values)
	if err != nil {
		panic(err)
	}

	return out
}

func buildResults(fnType reflect.Type, values []any) ([]reflect.Value, error) {
	n := fnType.NumOut()
	if len(values) > n {
		return nil, fmt.Errorf("spy: %w: %d return value(s) for %s", ErrInvalidArgument, len(values), fnType)
	}

	out := make([]reflect.Value, n)
	for i := range n {
		t := fnType.Out(i)
		if i >= len(values) {
			out[i] = reflect.Zero(t)
			continue
		}

		v, err := coerce(valueOf(values[i]), t)
		if err != nil {
			return nil, fmt.Errorf("spy: return value %d of %s: %w", i, fnType, err)
		}

		out[i] = exact(v, t)
	}

	return out, nil
}

func zeroResults(fnType reflect.Type) []reflect.Value {
	return results(fnType, nil)
}

// raised delivers err as the trailing error result when fnType has one,
// and as a panic otherwise.
func raised(fnType reflect.Type, err error) []reflect.Value {
	n := fnType.NumOut()
	if n == 0 || fnType.Out(n-1) != errorType {
		panic(err)
	}

	out := zeroResults(fnType)
	if err != nil {
		out[n-1] = exact(reflect.ValueOf(err), errorType)
	}

	return out
}

// exact returns v with the static type t, which MakeFunc results need.
func exact(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}

	e := reflect.New(t).Elem()
	e.Set(v)

	return e
}

func call(fn reflect.Value, fnType reflect.Type, in []reflect.Value) []reflect.Value {
	if fnType.IsVariadic() {
		return fn.CallSlice(in)
	}

	return fn.Call(in)
}

// implementation returns the custom implementation as a value of fnType.
func implementation(impl reflect.Value, fnType reflect.Type) reflect.Value {
	if !impl.IsValid() || impl.Kind() != reflect.Func {
		panic(fmt.Errorf("spy: %w: custom implementation is not a func", ErrInvalidArgument))
	}

	switch {
	case impl.Type() == fnType:
		return impl
	case impl.Type().ConvertibleTo(fnType):
		return impl.Convert(fnType)
	}

	panic(fmt.Errorf("spy: %w: custom implementation %s does not match %s", ErrInvalidArgument, impl.Type(), fnType))
}

// arguments flattens in, expanding a trailing variadic slice, so the call
// log holds exactly what the caller passed.
func arguments(fnType reflect.Type, in []reflect.Value) []any {
	args := make([]any, 0, len(in))
	for i, v := range in {
		if fnType.IsVariadic() && i == len(in)-1 {
			for j := range v.Len() {
				args = append(args, interfaceOf(v.Index(j)))
			}

			break
		}

		args = append(args, interfaceOf(v))
	}

	return args
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = interfaceOf(v)
	}

	return out
}

func trailingError(fnType reflect.Type, out []reflect.Value) error {
	n := fnType.NumOut()
	if n == 0 || fnType.Out(n-1) != errorType || len(out) != n {
		return nil
	}

	if e := out[n-1]; !e.IsNil() {
		err, _ := e.Interface().(error)
		return err
	}

	return nil
}
