package spy

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Kind tags the three kinds of agents an Agency tracks.
type Kind int

const (
	// KindSubroutine is a method spy.
	KindSubroutine Kind = iota
	// KindConstant is a constant spy.
	KindConstant
	// KindDouble is a standalone double.
	KindDouble
)

func (k Kind) String() string {
	switch k {
	case KindSubroutine:
		return "subroutine"
	case KindConstant:
		return "constant"
	case KindDouble:
		return "double"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Agent is anything an Agency tracks. The set is closed: *Subroutine,
// *Constant and *Double.
type Agent interface {
	kind() Kind
	// detach makes the agent inert without touching its target. Used when
	// the agency had to restore a binding itself.
	detach()
}

// Agency is the ledger of every active interception. It owns the
// interception chains of the members its spies hook.
//
// An Agency is safe for concurrent use, but hooking and unhooking the same
// member from several goroutines at once is not meaningful.
type Agency struct {
	mu          sync.Mutex
	nests       nests
	seq         uint64
	subroutines []*Subroutine
	constants   []*Constant
	doubles     []*Double
}

// NewAgency creates an empty, independent Agency.
func NewAgency() *Agency {
	return &Agency{nests: make(nests)}
}

var (
	defaultAgency *Agency
	defaultOnce   sync.Once
)

// Default returns the process-wide Agency used by the package level
// functions. It is created on first use.
func Default() *Agency {
	defaultOnce.Do(func() {
		defaultAgency = NewAgency()
	})

	return defaultAgency
}

func (a *Agency) chains() nests {
	if a.nests == nil {
		a.nests = make(nests)
	}

	return a.nests
}

// Enroll starts tracking agent. Enrolling the same agent twice tracks it
// twice.
func (a *Agency) Enroll(agent Agent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.enrollLocked(agent)
}

func (a *Agency) enrollLocked(agent Agent) error {
	a.seq++

	switch s := agent.(type) {
	case *Subroutine:
		if s == nil {
			break
		}

		s.seq = a.seq
		a.subroutines = append(a.subroutines, s)

		return nil
	case *Constant:
		if s == nil {
			break
		}

		s.seq = a.seq
		a.constants = append(a.constants, s)

		return nil
	case *Double:
		if s == nil {
			break
		}

		a.doubles = append(a.doubles, s)

		return nil
	}

	return fmt.Errorf("%w: %T", ErrInvalidSpyKind, agent)
}

// Remove stops tracking the first entry identical to agent. Removing an
// agent that is not tracked does nothing.
func (a *Agency) Remove(agent Agent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.removeLocked(agent)
}

func (a *Agency) removeLocked(agent Agent) error {
	switch s := agent.(type) {
	case *Subroutine:
		if s != nil {
			a.subroutines = removeFirst(a.subroutines, s)
			return nil
		}
	case *Constant:
		if s != nil {
			a.constants = removeFirst(a.constants, s)
			return nil
		}
	case *Double:
		if s != nil {
			a.doubles = removeFirst(a.doubles, s)
			return nil
		}
	}

	return fmt.Errorf("%w: %T", ErrInvalidSpyKind, agent)
}

func removeFirst[T comparable](list []T, item T) []T {
	if i := slices.Index(list, item); i >= 0 {
		return slices.Delete(list, i, i+1)
	}

	return list
}

// Subroutines returns the tracked method spies in enrollment order.
func (a *Agency) Subroutines() []*Subroutine {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.subroutines)
}

// Constants returns the tracked constant spies in enrollment order.
func (a *Agency) Constants() []*Constant {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.constants)
}

// Doubles returns the tracked doubles in enrollment order.
func (a *Agency) Doubles() []*Double {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.doubles)
}

type unhooker interface {
	Agent
	Unhook() error
	Hooked() bool
	order() uint64
}

// Dissolve unhooks every tracked spy, newest first so stacked layers
// unwind in order, and clears the ledger. A failing unhook does not stop
// the others: failures are logged and returned joined. Members whose
// chains could not be unwound are put back to their original binding.
func (a *Agency) Dissolve() error {
	a.mu.Lock()
	agents := make([]unhooker, 0, len(a.subroutines)+len(a.constants))
	for _, s := range a.subroutines {
		agents = append(agents, s)
	}

	for _, c := range a.constants {
		agents = append(agents, c)
	}
	a.mu.Unlock()

	slices.SortStableFunc(agents, func(x, y unhooker) int {
		switch {
		case x.order() > y.order():
			return -1
		case x.order() < y.order():
			return 1
		}

		return 0
	})

	var errs []error

	for _, agent := range agents {
		if !agent.Hooked() {
			continue
		}

		if err := safeUnhook(agent); err != nil {
			slog.Warn("Failed to unhook spy during dissolve", "kind", agent.kind(), "error", err)
			errs = append(errs, err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.purgeLocked(); err != nil {
		errs = append(errs, err)
	}

	a.reset()

	slog.Debug("dissolved agency", "failures", len(errs))

	return errors.Join(errs...)
}

func safeUnhook(agent unhooker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to unhook %s: panic: %v", agent.kind(), r)
		}
	}()

	return agent.Unhook()
}

// purgeLocked restores every chain left behind by failed unhooks.
func (a *Agency) purgeLocked() error {
	var errs []error

	for key, n := range a.nests {
		for _, l := range n.layers {
			l.owner.detach()
		}

		var err error
		if n.existed {
			err = n.table.Assign(key.name, n.original)
		} else {
			err = n.table.Remove(key.name)
		}

		if err != nil {
			slog.Warn("Failed to restore member", "member", key.name, "error", err)
			errs = append(errs, err)
		}

		delete(a.nests, key)
	}

	return errors.Join(errs...)
}

// reset forgets every tracked agent without unhooking anything.
func (a *Agency) reset() {
	a.subroutines = nil
	a.constants = nil
	a.doubles = nil
}
