package spy

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Namespace is a set of named bindings that constant spies can replace,
// add and remove.
type Namespace map[string]any

// Globals is the implicit namespace used when constant entry points are
// given a nil namespace.
var Globals = Namespace{}

// Constant spies on a named value binding of a namespace. While hooked the
// binding holds the replacement value; unhooking restores the prior value,
// or removes the binding if it did not exist.
type Constant struct {
	agency    *Agency
	namespace any
	table     Table
	id        identity
	name      string
	seq       uint64

	mu       sync.Mutex
	original reflect.Value
	existed  bool
	value    reflect.Value
	hasValue bool
	layer    *layer
	hooked   bool
	spent    bool
}

// NewConstant creates an unhooked spy on the binding name of namespace.
// A nil namespace means Globals.
func (a *Agency) NewConstant(namespace any, name string) (*Constant, error) {
	if namespace == nil {
		namespace = Globals
	}

	table, id, err := resolveTable(namespace)
	if err != nil {
		return nil, err
	}

	return &Constant{agency: a, namespace: namespace, table: table, id: id, name: name}, nil
}

func (c *Constant) kind() Kind { return KindConstant }

func (c *Constant) order() uint64 { return c.seq }

func (c *Constant) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooked = false
}

// Hook captures the current binding and installs the replacement. Without
// a replacement the binding keeps its current value.
func (c *Constant) Hook(opts ...HookOption) error {
	cfg := newHookConfig(opts)

	a := c.agency
	a.mu.Lock()
	defer a.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spent {
		return memberError(ErrAlreadyHooked, c.namespace, c.name)
	}

	current, ok := c.table.Lookup(c.name)
	if !ok {
		if _, grows := c.table.Grow(c.name); !grows {
			return memberError(ErrNoSuchMember, c.namespace, c.name)
		}
	}

	value := current
	switch {
	case cfg.hasValue:
		value = valueOf(cfg.value)
	case c.hasValue:
		value = c.value
	}

	l, err := a.chains().push(nestKey{id: c.id, name: c.name}, c.table, value, c)
	if err != nil {
		return fmt.Errorf("failed to hook constant %s on %s: %w", c.name, describeTarget(c.namespace), err)
	}

	c.original, c.existed = current, ok
	c.value, c.hasValue = value, true
	c.layer = l
	c.hooked = true
	c.spent = true

	slog.Debug("hooked constant", "name", c.name, "namespace", describeTarget(c.namespace), "existed", ok)

	return a.enrollLocked(c)
}

// Unhook restores the binding the spy shadowed.
func (c *Constant) Unhook() error {
	a := c.agency
	a.mu.Lock()
	defer a.mu.Unlock()

	c.mu.Lock()
	hooked, l := c.hooked, c.layer
	c.mu.Unlock()

	if !hooked {
		return memberError(ErrNotHooked, c.namespace, c.name)
	}

	err := a.chains().pop(l)
	if errors.Is(err, ErrOutOfOrderUnhook) {
		return fmt.Errorf("failed to unhook constant %s on %s: %w", c.name, describeTarget(c.namespace), err)
	}

	c.mu.Lock()
	c.hooked = false
	c.mu.Unlock()

	if rerr := a.removeLocked(c); rerr != nil {
		return rerr
	}

	slog.Debug("unhooked constant", "name", c.name, "namespace", describeTarget(c.namespace))

	if err != nil {
		return fmt.Errorf("failed to restore constant %s on %s: %w", c.name, describeTarget(c.namespace), err)
	}

	return nil
}

// AndReturn sets the replacement value. On a hooked spy the binding
// changes immediately, or once the spies stacked above it are unhooked.
func (c *Constant) AndReturn(value any) error {
	a := c.agency
	a.mu.Lock()
	defer a.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := valueOf(value)
	if c.hooked {
		if err := c.layer.set(v); err != nil {
			return fmt.Errorf("failed to replace constant %s on %s: %w", c.name, describeTarget(c.namespace), err)
		}
	}

	c.value, c.hasValue = v, true

	return nil
}

// Name returns the binding name.
func (c *Constant) Name() string { return c.name }

// Namespace returns the spied namespace.
func (c *Constant) Namespace() any { return c.namespace }

// Hooked reports whether the spy is installed.
func (c *Constant) Hooked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hooked
}

// Value returns the replacement value.
func (c *Constant) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return interfaceOf(c.value)
}

// Original returns the value captured at hook time, and false when the
// binding did not exist.
func (c *Constant) Original() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return interfaceOf(c.original), c.existed
}

func (c *Constant) String() string {
	return fmt.Sprintf("constant(%s.%s)", describeTarget(c.namespace), c.name)
}
