package spy

import (
	"fmt"
	"log/slog"
	"reflect"
)

// layer is one interception installed on a member. The top layer of a
// nest is the binding callers see; below points at the layer it shadows,
// nil meaning the original binding.
type layer struct {
	value reflect.Value
	below *layer
	owner Agent
	nest  *nest
}

// nest is the interception chain of one (target, member) pair.
type nest struct {
	key      nestKey
	table    Table
	original reflect.Value
	existed  bool
	layers   []*layer
}

func (n *nest) top() *layer {
	if len(n.layers) == 0 {
		return nil
	}

	return n.layers[len(n.layers)-1]
}

// nests indexes the live interception chains by (target identity, member).
// A nest exists only while it holds at least one layer.
type nests map[nestKey]*nest

// push installs value as the new visible binding of key. The original
// binding is captured when the first layer is pushed.
func (ns nests) push(key nestKey, table Table, value reflect.Value, owner Agent) (*layer, error) {
	n, ok := ns[key]
	if !ok {
		original, existed := table.Lookup(key.name)
		n = &nest{key: key, table: table, original: original, existed: existed}
	}

	l := &layer{value: value, below: n.top(), owner: owner, nest: n}
	if err := table.Assign(key.name, value); err != nil {
		return nil, err
	}

	n.layers = append(n.layers, l)
	ns[key] = n

	slog.Debug("pushed layer", "member", key.name, "target", key.id.typ, "depth", len(n.layers))

	return l, nil
}

// pop removes l, which must be the visible top of its nest, and restores
// whatever it shadowed. An emptied nest puts the original binding back
// exactly, deleting the member when it did not exist before.
func (ns nests) pop(l *layer) error {
	n := l.nest
	top := n.top()
	if top != l {
		return fmt.Errorf("%w: %s has %d layer(s) above it", ErrOutOfOrderUnhook, n.key.name, n.depthAbove(l))
	}

	n.layers = n.layers[:len(n.layers)-1]

	if next := n.top(); next != nil {
		slog.Debug("popped layer", "member", n.key.name, "target", n.key.id.typ, "depth", len(n.layers))
		return n.table.Assign(n.key.name, next.value)
	}

	delete(ns, n.key)
	slog.Debug("restored original", "member", n.key.name, "target", n.key.id.typ, "existed", n.existed)

	if n.existed {
		return n.table.Assign(n.key.name, n.original)
	}

	return n.table.Remove(n.key.name)
}

func (n *nest) depthAbove(l *layer) int {
	for i := len(n.layers) - 1; i >= 0; i-- {
		if n.layers[i] == l {
			return len(n.layers) - 1 - i
		}
	}

	return 0
}

// shadowed returns the binding l hides and whether one exists.
func (l *layer) shadowed() (reflect.Value, bool) {
	if l.below != nil {
		return l.below.value, true
	}

	return l.nest.original, l.nest.existed
}

// set changes the binding l installs, making it visible when l is on top.
func (l *layer) set(value reflect.Value) error {
	if l.nest.top() == l {
		if err := l.nest.table.Assign(l.nest.key.name, value); err != nil {
			return err
		}
	}

	l.value = value

	return nil
}

// active returns the topmost owner of kind k on key.
func (ns nests) active(key nestKey, k Kind) Agent {
	return ns.activeAt(key, k, 0)
}

// activeAt returns the owner of kind k on key with skip owners of the same
// kind above it.
func (ns nests) activeAt(key nestKey, k Kind, skip int) Agent {
	n, ok := ns[key]
	if !ok {
		return nil
	}

	for i := len(n.layers) - 1; i >= 0; i-- {
		if n.layers[i].owner.kind() != k {
			continue
		}

		if skip == 0 {
			return n.layers[i].owner
		}

		skip--
	}

	return nil
}
