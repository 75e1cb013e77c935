package spy

import (
	"fmt"
	"reflect"
)

// Table is a member table: the set of named members that can be
// intercepted on a target. Go types cannot be patched at runtime, so a
// target exposes its replaceable behavior and values through a Table.
//
// Pointers to structs, string keyed maps and doubles are adapted to a
// Table automatically. Implement Table to make any other type spyable.
type Table interface {
	// Lookup returns the current binding of name, and false when the
	// member does not exist.
	Lookup(name string) (reflect.Value, bool)
	// Assign binds name to value. An invalid value binds the zero value.
	Assign(name string, value reflect.Value) error
	// Remove deletes the binding of name.
	Remove(name string) error
	// Grow reports whether name can be created when it does not exist,
	// and the type a created callable member takes.
	Grow(name string) (reflect.Type, bool)
}

// identity is the (type, address) pair used to key interceptions. Values
// are never compared, only where they live.
type identity struct {
	typ  reflect.Type
	addr uintptr
}

type nestKey struct {
	id   identity
	name string
}

func identify(target any) (identity, error) {
	if target == nil {
		return identity{}, fmt.Errorf("%w: nil target", ErrInvalidArgument)
	}

	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		if v.IsNil() {
			return identity{}, fmt.Errorf("%w: nil %T target", ErrInvalidArgument, target)
		}

		return identity{typ: v.Type(), addr: v.Pointer()}, nil
	default:
		return identity{}, fmt.Errorf("%w: %T target is not a reference, pass a pointer", ErrInvalidArgument, target)
	}
}

// resolveTable adapts target to a Table.
func resolveTable(target any) (Table, identity, error) {
	id, err := identify(target)
	if err != nil {
		return nil, identity{}, err
	}

	if t, ok := target.(Table); ok {
		return t, id, nil
	}

	v := reflect.ValueOf(target)
	switch {
	case v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct:
		return structTable{v: v.Elem()}, id, nil
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		return mapTable{v: v}, id, nil
	}

	return nil, identity{}, fmt.Errorf("%w: %T cannot hold members, use a struct pointer, a map[string]any or a Table", ErrInvalidArgument, target)
}

func describeTarget(target any) string {
	if d, ok := target.(*Double); ok {
		return d.String()
	}

	return fmt.Sprintf("%T", target)
}

// structTable exposes the exported fields of a struct. Its shape is fixed.
type structTable struct {
	v reflect.Value
}

func (t structTable) field(name string) (reflect.Value, bool) {
	sf, ok := t.v.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}

	f := t.v.FieldByIndex(sf.Index)
	if !f.CanSet() {
		return reflect.Value{}, false
	}

	return f, true
}

func (t structTable) Lookup(name string) (reflect.Value, bool) {
	f, ok := t.field(name)
	if !ok {
		return reflect.Value{}, false
	}

	c := reflect.New(f.Type()).Elem()
	c.Set(f)

	return c, true
}

func (t structTable) Assign(name string, value reflect.Value) error {
	f, ok := t.field(name)
	if !ok {
		return fmt.Errorf("%w: field %s of %s", ErrNoSuchMember, name, t.v.Type())
	}

	converted, err := coerce(value, f.Type())
	if err != nil {
		return fmt.Errorf("failed to assign %s.%s: %w", t.v.Type(), name, err)
	}

	f.Set(converted)

	return nil
}

func (t structTable) Remove(name string) error {
	f, ok := t.field(name)
	if !ok {
		return fmt.Errorf("%w: field %s of %s", ErrNoSuchMember, name, t.v.Type())
	}

	f.Set(reflect.Zero(f.Type()))

	return nil
}

func (structTable) Grow(string) (reflect.Type, bool) {
	return nil, false
}

// mapTable exposes the keys of a string keyed map. Missing keys can be
// created and removed again.
type mapTable struct {
	v reflect.Value
}

func (t mapTable) key(name string) reflect.Value {
	return reflect.ValueOf(name).Convert(t.v.Type().Key())
}

func (t mapTable) Lookup(name string) (reflect.Value, bool) {
	e := t.v.MapIndex(t.key(name))
	if !e.IsValid() {
		return reflect.Value{}, false
	}

	if e.Kind() == reflect.Interface {
		if e.IsNil() {
			return reflect.Value{}, true
		}

		return e.Elem(), true
	}

	return e, true
}

func (t mapTable) Assign(name string, value reflect.Value) error {
	converted, err := coerce(value, t.v.Type().Elem())
	if err != nil {
		return fmt.Errorf("failed to assign key %q: %w", name, err)
	}

	t.v.SetMapIndex(t.key(name), converted)

	return nil
}

func (t mapTable) Remove(name string) error {
	t.v.SetMapIndex(t.key(name), reflect.Value{})

	return nil
}

func (t mapTable) Grow(string) (reflect.Type, bool) {
	elem := t.v.Type().Elem()
	if elem.Kind() == reflect.Interface {
		return doubleFuncType, true
	}

	return elem, true
}

// coerce makes value acceptable for a binding of type typ.
func coerce(value reflect.Value, typ reflect.Type) (reflect.Value, error) {
	if !value.IsValid() {
		return reflect.Zero(typ), nil
	}

	if value.Type().AssignableTo(typ) {
		return value, nil
	}

	if value.Type().ConvertibleTo(typ) && value.Kind() != reflect.String && typ.Kind() != reflect.String {
		converted := value.Convert(typ)
		if !lossless(value, converted) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit in %s", ErrInvalidArgument, value, typ)
		}

		return converted, nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrInvalidArgument, value.Type(), typ)
}

// lossless reports whether converted still holds the number in value.
// Narrowing between float kinds only fails on overflow.
func lossless(value, converted reflect.Value) bool {
	from, to := value.Kind(), converted.Kind()

	switch {
	case isFloat(from) && isFloat(to):
		return !converted.OverflowFloat(value.Float())
	case isSigned(from) && isUnsigned(to):
		return value.Int() >= 0 && converted.Convert(value.Type()).Equal(value)
	case isUnsigned(from) && isSigned(to):
		return converted.Int() >= 0 && converted.Convert(value.Type()).Equal(value)
	case isReal(from) && isReal(to):
		return converted.Convert(value.Type()).Equal(value)
	}

	return true
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isReal(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}

// valueOf is reflect.ValueOf that keeps untyped nil as the invalid Value.
func valueOf(v any) reflect.Value {
	if v == nil {
		return reflect.Value{}
	}

	return reflect.ValueOf(v)
}

// interfaceOf is the reverse of valueOf.
func interfaceOf(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}

	return v.Interface()
}
