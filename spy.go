package spy

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
)

// Returns is the mapping form of a name argument: each member is hooked
// and answers with its value.
type Returns map[string]any

type nameEntry struct {
	name     string
	value    any
	hasValue bool
}

// expandNames validates name arguments. Mappings expand in key order.
func expandNames(names []any) ([]nameEntry, error) {
	entries := make([]nameEntry, 0, len(names))

	for _, arg := range names {
		var m map[string]any

		switch n := arg.(type) {
		case string:
			entries = append(entries, nameEntry{name: n})
			continue
		case Returns:
			m = n
		case map[string]any:
			m = n
		default:
			return nil, invalidArgument(arg)
		}

		for _, name := range slices.Sorted(maps.Keys(m)) {
			entries = append(entries, nameEntry{name: name, value: m[name], hasValue: true})
		}
	}

	return entries, nil
}

// On hooks a Subroutine on target for every name, in order. A name is a
// member name, or a Returns mapping of member names to the value each
// answers with. When one name fails the spies hooked by this call are
// unhooked again.
func (a *Agency) On(target any, names ...any) ([]*Subroutine, error) {
	entries, err := expandNames(names)
	if err != nil {
		return nil, err
	}

	spies := make([]*Subroutine, 0, len(entries))

	for _, entry := range entries {
		s, err := a.NewSubroutine(target, entry.name)
		if err == nil {
			var opts []HookOption
			if entry.hasValue {
				opts = append(opts, WithReturn(entry.value))
			}

			err = s.Hook(opts...)
		}

		if err != nil {
			rollback(spies)
			return nil, err
		}

		spies = append(spies, s)
	}

	return spies, nil
}

// rollback unhooks spies newest first.
func rollback[T interface{ Unhook() error }](spies []T) {
	for i := len(spies) - 1; i >= 0; i-- {
		if err := spies[i].Unhook(); err != nil {
			slog.Warn("Failed to roll back spy", "error", err)
		}
	}
}

// Off unhooks the active Subroutine of every name on target, in order. A
// name given twice removes two stacked spies. Nothing is unhooked unless
// every name has an active spy. When an unhook fails the spies already
// removed are returned with the error.
func (a *Agency) Off(target any, names ...any) ([]*Subroutine, error) {
	entries, err := expandNames(names)
	if err != nil {
		return nil, err
	}

	agents, err := a.resolve(target, entries, KindSubroutine)
	if err != nil {
		return nil, err
	}

	spies := make([]*Subroutine, 0, len(agents))
	for _, agent := range agents {
		s := agent.(*Subroutine)
		if err := s.Unhook(); err != nil {
			return spies, err
		}

		spies = append(spies, s)
	}

	return spies, nil
}

// resolve finds the active spy of kind k for every entry. Repeated names
// resolve to successively deeper spies of the same member.
func (a *Agency) resolve(target any, entries []nameEntry, k Kind) ([]Agent, error) {
	id, err := identify(target)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]int, len(entries))
	agents := make([]Agent, len(entries))

	for i, entry := range entries {
		agent := a.chains().activeAt(nestKey{id: id, name: entry.name}, k, seen[entry.name])
		if agent == nil {
			return nil, memberError(ErrSpyNotFound, target, entry.name)
		}

		seen[entry.name]++
		agents[i] = agent
	}

	return agents, nil
}

// Get returns the active Subroutine of every name on target, nil where
// none is active.
func (a *Agency) Get(target any, names ...string) []*Subroutine {
	spies := make([]*Subroutine, len(names))
	for i, name := range names {
		spies[i] = a.get(target, name)
	}

	return spies
}

func (a *Agency) get(target any, name string) *Subroutine {
	s, _ := a.active(target, name, KindSubroutine).(*Subroutine)
	return s
}

func (a *Agency) active(target any, name string, k Kind) Agent {
	id, err := identify(target)
	if err != nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.chains().active(nestKey{id: id, name: name}, k)
}

// OnConstant hooks a Constant on namespace for every name, in order. A
// Returns mapping sets the replacement values in the same call. A nil
// namespace means Globals.
func (a *Agency) OnConstant(namespace any, names ...any) ([]*Constant, error) {
	entries, err := expandNames(names)
	if err != nil {
		return nil, err
	}

	spies := make([]*Constant, 0, len(entries))

	for _, entry := range entries {
		c, err := a.NewConstant(namespace, entry.name)
		if err == nil {
			var opts []HookOption
			if entry.hasValue {
				opts = append(opts, WithValue(entry.value))
			}

			err = c.Hook(opts...)
		}

		if err != nil {
			rollback(spies)
			return nil, err
		}

		spies = append(spies, c)
	}

	return spies, nil
}

// OffConstant unhooks the active Constant of every name on namespace, in
// order. It follows the rules of Off.
func (a *Agency) OffConstant(namespace any, names ...any) ([]*Constant, error) {
	entries, err := expandNames(names)
	if err != nil {
		return nil, err
	}

	if namespace == nil {
		namespace = Globals
	}

	agents, err := a.resolve(namespace, entries, KindConstant)
	if err != nil {
		return nil, err
	}

	spies := make([]*Constant, 0, len(agents))
	for _, agent := range agents {
		c := agent.(*Constant)
		if err := c.Unhook(); err != nil {
			return spies, err
		}

		spies = append(spies, c)
	}

	return spies, nil
}

// GetConstant returns the active Constant of every name on namespace, nil
// where none is active.
func (a *Agency) GetConstant(namespace any, names ...string) []*Constant {
	if namespace == nil {
		namespace = Globals
	}

	spies := make([]*Constant, len(names))
	for i, name := range names {
		spies[i] = a.getConstant(namespace, name)
	}

	return spies
}

func (a *Agency) getConstant(namespace any, name string) *Constant {
	c, _ := a.active(namespace, name, KindConstant).(*Constant)
	return c
}

// On hooks spies on target with the Default agency. See Agency.On.
func On(target any, names ...any) ([]*Subroutine, error) {
	return Default().On(target, names...)
}

// OnMethod hooks a single spy on target with the Default agency.
func OnMethod(target any, name string, opts ...HookOption) (*Subroutine, error) {
	s, err := Default().NewSubroutine(target, name)
	if err != nil {
		return nil, err
	}

	if err := s.Hook(opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// Off unhooks spies on target with the Default agency. See Agency.Off.
func Off(target any, names ...any) ([]*Subroutine, error) {
	return Default().Off(target, names...)
}

// Get looks up active spies with the Default agency. See Agency.Get.
func Get(target any, names ...string) []*Subroutine {
	return Default().Get(target, names...)
}

// OnConstant hooks constant spies with the Default agency.
func OnConstant(namespace any, names ...any) ([]*Constant, error) {
	return Default().OnConstant(namespace, names...)
}

// OffConstant unhooks constant spies with the Default agency.
func OffConstant(namespace any, names ...any) ([]*Constant, error) {
	return Default().OffConstant(namespace, names...)
}

// GetConstant looks up active constant spies with the Default agency.
func GetConstant(namespace any, names ...string) []*Constant {
	return Default().GetConstant(namespace, names...)
}

// NewDouble creates a double with the Default agency.
func NewDouble(name string, stubs ...map[string]any) (*Double, error) {
	return Default().NewDouble(name, stubs...)
}

// Teardown dissolves the Default agency, unhooking every spy. Run it
// after each test.
func Teardown() error {
	if err := Default().Dissolve(); err != nil {
		return fmt.Errorf("failed to tear down spies: %w", err)
	}

	return nil
}

// IsSpyError reports whether err is one of the errors reported by the
// interception core.
func IsSpyError(err error) bool {
	for _, target := range []error{
		ErrInvalidArgument, ErrSpyNotFound, ErrAlreadyHooked, ErrNotHooked,
		ErrOutOfOrderUnhook, ErrNoSuchMember, ErrInvalidSpyKind,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// Invoke calls the visible binding of name on target with args and returns
// its results.
func (a *Agency) Invoke(target any, name string, args ...any) ([]any, error) {
	table, _, err := resolveTable(target)
	if err != nil {
		return nil, err
	}

	fn, ok := table.Lookup(name)
	if !ok || !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, memberError(ErrNoSuchMember, target, name)
	}

	t := fn.Type()
	if (!t.IsVariadic() && len(args) != t.NumIn()) || (t.IsVariadic() && len(args) < t.NumIn()-1) {
		return nil, fmt.Errorf("%w: %d argument(s) for %s", ErrInvalidArgument, len(args), t)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := t.In(min(i, t.NumIn()-1))
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		}

		v, err := coerce(valueOf(arg), pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, name, err)
		}

		in[i] = v
	}

	return interfaces(fn.Call(in)), nil
}

// Invoke calls a member through the Default agency. See Agency.Invoke.
func Invoke(target any, name string, args ...any) ([]any, error) {
	return Default().Invoke(target, name, args...)
}
