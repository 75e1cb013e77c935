package spy

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

// Call is one recorded invocation of a spied member.
type Call struct {
	// Args holds the arguments in order, variadic arguments expanded.
	Args []any
	// Results holds the values returned to the caller, nil when the call
	// panicked.
	Results []any
	// Err is the error returned or raised by the call, if any.
	Err error
	// Panic is the value the call panicked with, if any.
	Panic any
}

// HookOption configures Hook.
type HookOption func(*hookConfig)

type hookConfig struct {
	force      bool
	returns    []any
	hasReturns bool
	value      any
	hasValue   bool
}

// WithForce creates the member when the target does not have it. Only
// targets that can grow, such as maps and doubles, accept new members.
func WithForce() HookOption {
	return func(c *hookConfig) {
		c.force = true
	}
}

// WithReturn hooks with a fixed return policy already applied.
func WithReturn(values ...any) HookOption {
	return func(c *hookConfig) {
		c.returns = values
		c.hasReturns = true
	}
}

// WithValue hooks a constant with its replacement value already applied.
func WithValue(value any) HookOption {
	return func(c *hookConfig) {
		c.value = value
		c.hasValue = true
	}
}

func newHookConfig(opts []HookOption) hookConfig {
	var c hookConfig
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Subroutine spies on a callable member of a target. While hooked, every
// call to the member is recorded and answered according to the current
// policy, which passes through to the shadowed behavior by default.
type Subroutine struct {
	agency *Agency
	target any
	table  Table
	id     identity
	name   string
	seq    uint64

	mu       sync.Mutex
	fnType   reflect.Type
	original reflect.Value
	policy   policy
	calls    []*Call
	layer    *layer
	hooked   bool
	spent    bool
}

// NewSubroutine creates an unhooked spy on the member name of target.
func (a *Agency) NewSubroutine(target any, name string) (*Subroutine, error) {
	table, id, err := resolveTable(target)
	if err != nil {
		return nil, err
	}

	return &Subroutine{agency: a, target: target, table: table, id: id, name: name}, nil
}

func (s *Subroutine) kind() Kind { return KindSubroutine }

func (s *Subroutine) order() uint64 { return s.seq }

func (s *Subroutine) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooked = false
}

// Hook installs the spy on its member and enrolls it with its Agency.
// A spy can be hooked once.
func (s *Subroutine) Hook(opts ...HookOption) error {
	cfg := newHookConfig(opts)

	a := s.agency
	a.mu.Lock()
	defer a.mu.Unlock()

	s.mu.Lock()
	spent := s.spent
	s.mu.Unlock()

	if spent {
		return memberError(ErrAlreadyHooked, s.target, s.name)
	}

	fnType, original, err := s.resolve(cfg.force)
	if err != nil {
		return err
	}

	if cfg.hasReturns {
		if _, err := buildResults(fnType, cfg.returns); err != nil {
			return fmt.Errorf("failed to hook %s on %s: %w", s.name, describeTarget(s.target), err)
		}
	}

	s.mu.Lock()
	s.fnType = fnType
	s.original = original
	if cfg.hasReturns {
		s.policy = policy{kind: fixedReturn, values: cfg.returns}
	}
	s.mu.Unlock()

	dispatcher := reflect.MakeFunc(fnType, s.dispatch)

	l, err := a.chains().push(nestKey{id: s.id, name: s.name}, s.table, dispatcher, s)
	if err != nil {
		return fmt.Errorf("failed to hook %s on %s: %w", s.name, describeTarget(s.target), err)
	}

	s.mu.Lock()
	s.layer = l
	s.hooked = true
	s.spent = true
	s.mu.Unlock()

	slog.Debug("hooked subroutine", "member", s.name, "target", describeTarget(s.target))

	return a.enrollLocked(s)
}

// resolve finds the signature of the member, creating one when forced.
func (s *Subroutine) resolve(force bool) (reflect.Type, reflect.Value, error) {
	current, ok := s.table.Lookup(s.name)
	if ok && current.IsValid() {
		if current.Kind() != reflect.Func {
			return nil, reflect.Value{}, fmt.Errorf("%w: %s on %s is a %s, not a func",
				ErrNoSuchMember, s.name, describeTarget(s.target), current.Type())
		}

		return current.Type(), current, nil
	}

	if !force {
		return nil, reflect.Value{}, memberError(ErrNoSuchMember, s.target, s.name)
	}

	typ, grows := s.table.Grow(s.name)
	if !grows || typ == nil || typ.Kind() != reflect.Func {
		return nil, reflect.Value{}, fmt.Errorf("%w: %s cannot be created on %s",
			ErrNoSuchMember, s.name, describeTarget(s.target))
	}

	return typ, current, nil
}

// Unhook removes the spy from its member, restoring what it shadowed.
// Spies stacked on the same member must be unhooked newest first.
func (s *Subroutine) Unhook() error {
	a := s.agency
	a.mu.Lock()
	defer a.mu.Unlock()

	s.mu.Lock()
	hooked, l := s.hooked, s.layer
	s.mu.Unlock()

	if !hooked {
		return memberError(ErrNotHooked, s.target, s.name)
	}

	err := a.chains().pop(l)
	if errors.Is(err, ErrOutOfOrderUnhook) {
		return fmt.Errorf("failed to unhook %s on %s: %w", s.name, describeTarget(s.target), err)
	}

	s.mu.Lock()
	s.hooked = false
	s.mu.Unlock()

	if rerr := a.removeLocked(s); rerr != nil {
		return rerr
	}

	slog.Debug("unhooked subroutine", "member", s.name, "target", describeTarget(s.target))

	if err != nil {
		return fmt.Errorf("failed to restore %s on %s: %w", s.name, describeTarget(s.target), err)
	}

	return nil
}

// dispatch is the body of the installed replacement.
func (s *Subroutine) dispatch(in []reflect.Value) []reflect.Value {
	s.mu.Lock()
	p, l, fnType := s.policy, s.layer, s.fnType
	c := &Call{Args: arguments(fnType, in)}
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	var out []reflect.Value

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r := recover(); r != nil {
			c.Panic = r
			if err, ok := r.(error); ok {
				c.Err = err
			}

			panic(r)
		}

		c.Results = interfaces(out)
		c.Err = trailingError(fnType, out)
	}()

	out = s.apply(p, l, fnType, in, c.Args)

	return out
}

func (s *Subroutine) apply(p policy, l *layer, fnType reflect.Type, in []reflect.Value, args []any) []reflect.Value {
	switch p.kind {
	case fixedReturn:
		return results(fnType, p.values)
	case computedReturn:
		return results(fnType, p.compute(args))
	case raise:
		if p.errFunc != nil {
			return raised(fnType, p.errFunc(args))
		}

		return raised(fnType, p.err)
	case customImplementation:
		return call(implementation(p.impl, fnType), fnType, in)
	}

	shadow, ok := l.shadowed()
	if !ok {
		return zeroResults(fnType)
	}

	if !shadow.IsValid() || shadow.Kind() != reflect.Func || shadow.IsNil() {
		panic(fmt.Errorf("spy: call of nil %s through %s", fnType, s.name))
	}

	return call(shadow, fnType, in)
}

func (s *Subroutine) setPolicy(p policy) *Subroutine {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policy = p

	return s
}

// AndReturn answers every call with values. Missing trailing results are
// zero. Values that do not fit the signature panic at call time.
func (s *Subroutine) AndReturn(values ...any) *Subroutine {
	return s.setPolicy(policy{kind: fixedReturn, values: values})
}

// AndCompute answers every call with the results of fn applied to the
// call arguments.
func (s *Subroutine) AndCompute(fn func(args []any) []any) *Subroutine {
	return s.setPolicy(policy{kind: computedReturn, compute: fn})
}

// AndRaise answers every call with err: as the trailing error result when
// the member returns one, as a panic otherwise.
func (s *Subroutine) AndRaise(err error) *Subroutine {
	return s.setPolicy(policy{kind: raise, err: err})
}

// AndRaiseFunc is AndRaise with the error built from the call arguments.
func (s *Subroutine) AndRaiseFunc(fn func(args []any) error) *Subroutine {
	return s.setPolicy(policy{kind: raise, errFunc: fn})
}

// AndCall answers every call by calling fn, which must have the member's
// signature.
func (s *Subroutine) AndCall(fn any) *Subroutine {
	return s.setPolicy(policy{kind: customImplementation, impl: valueOf(fn)})
}

// PassThrough answers every call with the shadowed behavior. This is the
// default policy.
func (s *Subroutine) PassThrough() *Subroutine {
	return s.setPolicy(policy{})
}

// Name returns the spied member name.
func (s *Subroutine) Name() string { return s.name }

// Target returns the spied target.
func (s *Subroutine) Target() any { return s.target }

// Hooked reports whether the spy is installed.
func (s *Subroutine) Hooked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hooked
}

// Original returns the binding that was visible when the spy was hooked,
// nil if the member was created by the spy.
func (s *Subroutine) Original() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return interfaceOf(s.original)
}

// Policy describes the current policy.
func (s *Subroutine) Policy() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.policy.String()
}

// Calls returns a copy of the call log in invocation order.
func (s *Subroutine) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Call, len(s.calls))
	for i, c := range s.calls {
		calls[i] = Call{Args: slices.Clone(c.Args), Results: slices.Clone(c.Results), Err: c.Err, Panic: c.Panic}
	}

	return calls
}

// CallCount returns the number of recorded calls.
func (s *Subroutine) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// Called reports whether the member was called at least once.
func (s *Subroutine) Called() bool {
	return s.CallCount() > 0
}

// LastCall returns the most recent call.
func (s *Subroutine) LastCall() (Call, bool) {
	calls := s.Calls()
	if len(calls) == 0 {
		return Call{}, false
	}

	return calls[len(calls)-1], true
}

// ResetCalls empties the call log.
func (s *Subroutine) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = nil
}

func (s *Subroutine) String() string {
	return fmt.Sprintf("spy(%s.%s)", describeTarget(s.target), s.name)
}
