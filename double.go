package spy

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
)

// DoubleFunc is the signature of every member of a Double.
type DoubleFunc func(args ...any) (any, error)

var doubleFuncType = reflect.TypeFor[DoubleFunc]()

// Double is a standalone fake with no real object behind it. Its members
// exist only once stubbed, and each is backed by a Subroutine hooked on
// the double itself.
type Double struct {
	agency *Agency
	name   string

	mu      sync.Mutex
	members map[string]DoubleFunc
}

// NewDouble creates a double and enrolls it. Every key of stubs becomes a
// member answering with its value.
func (a *Agency) NewDouble(name string, stubs ...map[string]any) (*Double, error) {
	d := &Double{agency: a, name: name, members: make(map[string]DoubleFunc)}

	for _, m := range stubs {
		for _, member := range slices.Sorted(maps.Keys(m)) {
			if _, err := d.Stub(member, WithReturn(m[member])); err != nil {
				return nil, err
			}
		}
	}

	if err := a.Enroll(d); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Double) kind() Kind { return KindDouble }

func (d *Double) detach() {}

// Stub returns the spy backing member, hooking a new one when the member
// has none. WithReturn applies to an existing spy too.
func (d *Double) Stub(member string, opts ...HookOption) (*Subroutine, error) {
	if s := d.Spy(member); s != nil {
		if cfg := newHookConfig(opts); cfg.hasReturns {
			s.AndReturn(cfg.returns...)
		}

		return s, nil
	}

	s, err := d.agency.NewSubroutine(d, member)
	if err != nil {
		return nil, err
	}

	if err := s.Hook(append(opts, WithForce())...); err != nil {
		return nil, err
	}

	return s, nil
}

// Spy returns the active spy backing member, or nil.
func (d *Double) Spy(member string) *Subroutine {
	return d.agency.Get(d, member)[0]
}

// Call invokes member with args.
func (d *Double) Call(member string, args ...any) (any, error) {
	d.mu.Lock()
	fn, ok := d.members[member]
	d.mu.Unlock()

	if !ok || fn == nil {
		return nil, memberError(ErrNoSuchMember, d, member)
	}

	return fn(args...)
}

// Members returns the names of the current members, sorted.
func (d *Double) Members() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Sorted(maps.Keys(d.members))
}

// Name returns the diagnostic name of the double.
func (d *Double) Name() string { return d.name }

func (d *Double) String() string {
	if d.name == "" {
		return "double"
	}

	return fmt.Sprintf("double(%s)", d.name)
}

// Lookup implements Table.
func (d *Double) Lookup(member string) (reflect.Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn, ok := d.members[member]
	if !ok {
		return reflect.Value{}, false
	}

	return reflect.ValueOf(fn), true
}

// Assign implements Table.
func (d *Double) Assign(member string, value reflect.Value) error {
	v, err := coerce(value, doubleFuncType)
	if err != nil {
		return fmt.Errorf("failed to assign %s on %s: %w", member, d, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.members[member] = v.Convert(doubleFuncType).Interface().(DoubleFunc)

	return nil
}

// Remove implements Table.
func (d *Double) Remove(member string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.members, member)

	return nil
}

// Grow implements Table. Doubles accept any member.
func (d *Double) Grow(string) (reflect.Type, bool) {
	return doubleFuncType, true
}
