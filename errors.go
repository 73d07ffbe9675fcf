package ecs

import "fmt"

// StaleEntityError is returned when an entity handle's generation no longer
// matches the pool slot it names.
type StaleEntityError struct {
	Entity Entity
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("entity %v is stale (slot was reused or freed)", e.Entity)
}

// UnknownTypeError is returned when a DataTypeId has no registry entry.
type UnknownTypeError struct {
	ID DataTypeId
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("data type %d is not registered", e.ID)
}

// TypeMismatchError is returned when a value's Go type does not match the
// layout registered for a DataTypeId.
type TypeMismatchError struct {
	ID       DataTypeId
	Expected string
	Got      string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for data type %d: expected %s, got %s", e.ID, e.Expected, e.Got)
}

// CyclicRelationError is returned when inserting a tree-relation triple
// would create a cycle.
type CyclicRelationError struct {
	From, To Entity
}

func (e CyclicRelationError) Error() string {
	return fmt.Sprintf("relating %v -> %v would create a cycle in a tree relation", e.From, e.To)
}

// ObserverRecursionLimitExceededError is raised as a panic by the observer
// registry when an observer, directly or transitively, triggers more nested
// notifications than the configured limit allows.
type ObserverRecursionLimitExceededError struct {
	Limit int
}

func (e ObserverRecursionLimitExceededError) Error() string {
	return fmt.Sprintf("observer recursion limit exceeded (limit %d)", e.Limit)
}

// SchedulerCycleError is returned when a system's before/after constraints
// form a cycle. It is fatal at world startup.
type SchedulerCycleError struct {
	Systems []string
}

func (e SchedulerCycleError) Error() string {
	return fmt.Sprintf("scheduler ordering constraints form a cycle: %v", e.Systems)
}

// AmbiguousOrderError is returned (or logged, depending on configuration)
// when two conflicting systems have no ordering constraint between them.
type AmbiguousOrderError struct {
	A, B string
}

func (e AmbiguousOrderError) Error() string {
	return fmt.Sprintf("systems %q and %q conflict but have no ordering constraint", e.A, e.B)
}

// LockedWorldError is returned when a structural mutation is attempted
// while the world is locked for iteration.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is locked for iteration; use a CommandBuffer instead"
}

// ComponentExistsError reports a column an entity's archetype already
// contains. No function in this package returns it: AddComponent on an
// entity that already carries the column overwrites the value.
type ComponentExistsError struct {
	ID DataTypeId
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component %d already exists on entity", e.ID)
}

// ComponentNotFoundError reports a missed component lookup. No function in
// this package returns it: Get reports a miss with ok=false.
type ComponentNotFoundError struct {
	ID DataTypeId
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %d does not exist on entity", e.ID)
}
