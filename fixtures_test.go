package spy

import (
	"errors"
	"reflect"
)

var errBoom = errors.New("boom")

type greeter struct {
	Greet func() string
	Add   func(a, b int) int
	Open  func(name string) (string, error)
	Log   func(format string, args ...any) int
	Level func() int8
	Name  string

	hidden func() string
}

func newGreeter() *greeter {
	return &greeter{
		Greet: func() string { return "hi" },
		Add:   func(a, b int) int { return a + b },
		Open: func(name string) (string, error) {
			if name == "" {
				return "", errors.New("empty name")
			}

			return "opened " + name, nil
		},
		Log:    func(_ string, args ...any) int { return len(args) },
		Level:  func() int8 { return 1 },
		Name:   "g",
		hidden: func() string { return "hidden" },
	}
}

type limits struct {
	LIMIT int
	Label string
}

type gauges struct {
	Small int8
	Count uint8
	Ratio int
	Scale float32
}

var errFlaky = errors.New("flaky assign")

// flakyTable is a Table whose assignments can be made to fail.
type flakyTable struct {
	members    map[string]reflect.Value
	failAssign bool
}

func newFlakyTable() *flakyTable {
	return &flakyTable{members: map[string]reflect.Value{
		"Ping": reflect.ValueOf(func() string { return "pong" }),
	}}
}

func (f *flakyTable) Lookup(name string) (reflect.Value, bool) {
	v, ok := f.members[name]
	return v, ok
}

func (f *flakyTable) Assign(name string, value reflect.Value) error {
	if f.failAssign {
		return errFlaky
	}

	f.members[name] = value

	return nil
}

func (f *flakyTable) Remove(name string) error {
	delete(f.members, name)
	return nil
}

func (f *flakyTable) Grow(string) (reflect.Type, bool) {
	return nil, false
}

func (f *flakyTable) ping() string {
	return f.members["Ping"].Interface().(func() string)()
}
