// Package spy is a test-doubling engine. It replaces members of live
// objects with recording spies, replaces named values with constant spies,
// and builds standalone doubles, and it can restore every one of them,
// individually or all at once.
//
// Go types cannot be changed at runtime, so a member is a named binding in
// a member table: an exported field of a struct reached through a pointer,
// a key of a string keyed map, a member of a Double, or anything a custom
// Table exposes. A callable member is a func-typed binding.
//
//	g := &Greeter{Greet: func() string { return "hi" }}
//
//	spy.On(g, spy.Returns{"Greet": "yo"})
//	g.Greet() // "yo"
//	spy.Off(g, "Greet")
//	g.Greet() // "hi"
//
// Several spies may be hooked on one member. They stack: the newest is the
// one callers see, a pass-through spy delegates to the one below it, and
// they must be unhooked newest first.
//
// Every spy is tracked by an Agency. Package level functions use the
// Default agency; call Teardown after each test to unhook whatever is
// left.
package spy
