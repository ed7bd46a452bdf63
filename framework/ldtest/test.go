package ldtest

// Test is one unit of work in a suite. The runner calls Setup, then Run if Setup did not fail or
// skip, then Teardown unconditionally.
//
// Setup creates preconditions and records them in t.State(); Run exercises the behavior under test
// and makes assertions; Teardown removes whatever Setup created so that nothing leaks into the
// next test. A suite is simply an ordered slice of Tests.
type Test interface {
	Name() string
	Setup(t *T)
	Run(t *T)
	Teardown(t *T)
}

// Definition holds the stage functions of a test. Any of them may be nil.
type Definition struct {
	Setup    func(*T)
	Run      func(*T)
	Teardown func(*T)
}

type definedTest struct {
	name string
	def  Definition
}

// Define builds a Test from a name and its stage functions.
func Define(name string, def Definition) Test {
	return definedTest{name: name, def: def}
}

// Simple builds a Test that has only a run stage.
func Simple(name string, run func(*T)) Test {
	return Define(name, Definition{Run: run})
}

func (d definedTest) Name() string { return d.name }

func (d definedTest) Setup(t *T) {
	if d.def.Setup != nil {
		d.def.Setup(t)
	}
}

func (d definedTest) Run(t *T) {
	if d.def.Run != nil {
		d.def.Run(t)
	}
}

func (d definedTest) Teardown(t *T) {
	if d.def.Teardown != nil {
		d.def.Teardown(t)
	}
}
