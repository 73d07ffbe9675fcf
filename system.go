package ecs

// AccessMode says whether a system's declared access to a DataTypeId (or
// resource) is read-only or read-write, the unit the scheduler's conflict
// detection works in (spec SS4.10).
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
)

// Access is one entry in a system's static access set.
type Access struct {
	Type DataTypeId
	Mode AccessMode
}

// RunCondition gates whether a system runs this frame. It is evaluated at
// most once per frame per distinct condition and cached for the rest of
// that frame (spec SS4.10), the way the teacher's SimpleCache memoizes
// by-key lookups elsewhere in the corpus.
type RunCondition func(w *World) bool

// SystemFunc is the body of a system: it receives the world (locked for
// the duration of the call; structural changes must go through a
// CommandBuffer) and a buffer to record deferred mutations into.
type SystemFunc func(w *World, cmd *CommandBuffer)

// SystemId identifies a registered system for ordering-constraint
// references.
type SystemId uint32

// systemEntry is one system's full registration: its body, declared access
// set (or wholeWorld for systems too dynamic to summarize, e.g. ones that
// run ad hoc queries over arbitrary columns), ordering constraints and run
// conditions.
type systemEntry struct {
	id         SystemId
	name       string
	fn         SystemFunc
	access     []Access
	wholeWorld bool
	beforeLbl  map[string]bool // labels (tag names or other systems' names) this system must run before
	afterLbl   map[string]bool // labels this system must run after
	tags       map[string]bool
	conditions []RunCondition
}

// SystemBuilder accumulates one system's registration before it is added
// to a WorldBuilder's scheduler, the way a fluent builder composes a
// system's ordering constraints without a combinatorial explosion of
// AddSystem overloads.
type SystemBuilder struct {
	entry systemEntry
}

// NewSystem starts building a system registration named name (used only
// for diagnostics: cycle/ambiguity errors name systems by this string).
func NewSystem(name string, fn SystemFunc) *SystemBuilder {
	return &SystemBuilder{entry: systemEntry{
		name:      name,
		fn:        fn,
		beforeLbl: make(map[string]bool),
		afterLbl:  make(map[string]bool),
		tags:      make(map[string]bool),
	}}
}

// Before constrains the system to run before every other system tagged
// with tag (or, if tag names another system directly, before that system).
func (s *SystemBuilder) Before(tag Tag) *SystemBuilder {
	s.entry.beforeLbl[tag.String()] = true
	return s
}

// After constrains the system to run after every other system tagged with
// tag (or, if tag names another system directly, after that system).
func (s *SystemBuilder) After(tag Tag) *SystemBuilder {
	s.entry.afterLbl[tag.String()] = true
	return s
}

// Reads declares read-only access to a component/relation column.
func (s *SystemBuilder) Reads(t DataTypeId) *SystemBuilder {
	s.entry.access = append(s.entry.access, Access{Type: t, Mode: AccessRead})
	return s
}

// Writes declares read-write access to a component/relation column.
func (s *SystemBuilder) Writes(t DataTypeId) *SystemBuilder {
	s.entry.access = append(s.entry.access, Access{Type: t, Mode: AccessWrite})
	return s
}

// WholeWorld marks the system as accessing the entire world (e.g. it runs
// ad hoc queries over types not known until runtime), opting it out of
// fine-grained conflict detection: it is treated as conflicting with every
// other system's access set.
func (s *SystemBuilder) WholeWorld() *SystemBuilder {
	s.entry.wholeWorld = true
	return s
}

// Tagged associates the system with a schedule tag so other systems can
// order before/after the whole group at once.
func (s *SystemBuilder) Tagged(tag Tag) *SystemBuilder {
	s.entry.tags[tag.String()] = true
	return s
}

// RunIf adds a run condition; the system only executes in frames where
// every attached condition returns true.
func (s *SystemBuilder) RunIf(cond RunCondition) *SystemBuilder {
	s.entry.conditions = append(s.entry.conditions, cond)
	return s
}
