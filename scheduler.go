package ecs

import (
	"fmt"
	"sort"
)

// Scheduler holds every registered system and computes, once at build
// time, a topologically sorted run order honoring before/after
// constraints and flagging read/write conflicts with no declared ordering
// (spec SS4.10). Run order ties break by registration order, matching the
// AnimoEngine SystemManager's stable priority sort generalized from an
// integer priority to a full dependency graph.
type Scheduler struct {
	entries  []*systemEntry
	byLabel  map[string][]SystemId // tag name or system name -> systems wearing it
	order    []SystemId
	log      Logger
	ambiguity AmbiguityPolicy

	conditionCache *SimpleCache[bool] // keyed by conditionKey (function pointer), rebuilt each frame
}

// NewScheduler constructs an empty scheduler.
func NewScheduler(log Logger, ambiguity AmbiguityPolicy) *Scheduler {
	return &Scheduler{
		byLabel:   make(map[string][]SystemId),
		log:       log,
		ambiguity: ambiguity,
	}
}

// Add registers a system, returning its SystemId.
func (s *Scheduler) Add(b *SystemBuilder) SystemId {
	id := SystemId(len(s.entries) + 1)
	entry := b.entry
	entry.id = id
	s.entries = append(s.entries, &entry)

	s.byLabel[entry.name] = append(s.byLabel[entry.name], id)
	for tag := range entry.tags {
		s.byLabel[tag] = append(s.byLabel[tag], id)
	}
	return id
}

func (s *Scheduler) entry(id SystemId) *systemEntry {
	return s.entries[id-1]
}

// conflicts reports whether two systems' declared access sets overlap on a
// write, i.e. they cannot safely run in either order without synchronizing.
func conflicts(a, b *systemEntry) bool {
	if a.wholeWorld || b.wholeWorld {
		return true
	}
	for _, ac := range a.access {
		for _, bc := range b.access {
			if ac.Type != bc.Type {
				continue
			}
			if ac.Mode == AccessWrite || bc.Mode == AccessWrite {
				return true
			}
		}
	}
	return false
}

// Build computes the run order. It must be called once, after every system
// has been added, before the first RunFrame. Returns SchedulerCycleError if
// ordering constraints are unsatisfiable, or AmbiguousOrderError if
// ambiguity is AmbiguityError and two conflicting systems have no
// constraint between them.
func (s *Scheduler) Build() error {
	n := len(s.entries)
	beforeEdges := make([][]SystemId, n+1) // edges[a] = systems that must run after a
	indegree := make([]int, n+1)

	addEdge := func(from, to SystemId) {
		beforeEdges[from] = append(beforeEdges[from], to)
		indegree[to]++
	}

	for _, e := range s.entries {
		for label := range e.beforeLbl {
			for _, other := range s.byLabel[label] {
				if other != e.id {
					addEdge(e.id, other)
				}
			}
		}
		for label := range e.afterLbl {
			for _, other := range s.byLabel[label] {
				if other != e.id {
					addEdge(other, e.id)
				}
			}
		}
	}

	hasConstraint := make(map[[2]SystemId]bool)
	for from := SystemId(1); int(from) <= n; from++ {
		for _, to := range beforeEdges[from] {
			hasConstraint[[2]SystemId{from, to}] = true
			hasConstraint[[2]SystemId{to, from}] = true
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := s.entries[i], s.entries[j]
			if !conflicts(a, b) {
				continue
			}
			if hasConstraint[[2]SystemId{a.id, b.id}] {
				continue
			}
			msg := AmbiguousOrderError{A: a.name, B: b.name}
			if s.ambiguity == AmbiguityError {
				return msg
			}
			s.log.WithField("systems", []string{a.name, b.name}).Warn(msg.Error())
		}
	}

	queue := make([]SystemId, 0, n)
	for id := SystemId(1); int(id) <= n; id++ {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	var order []SystemId
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
		next := queue[0]
		queue = queue[1:]
		order = append(order, next)
		for _, to := range beforeEdges[next] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != n {
		var stuck []string
		for id := SystemId(1); int(id) <= n; id++ {
			if indegree[id] > 0 {
				stuck = append(stuck, s.entry(id).name)
			}
		}
		return SchedulerCycleError{Systems: stuck}
	}

	s.order = order
	return nil
}

// RunFrame evaluates each system's run conditions (cached per frame) and
// runs every system whose conditions all pass, in build-computed order,
// each with its own CommandBuffer applied immediately after it returns —
// mirroring the teacher corpus's "collect mutations, then flush" pattern
// but scoped per system rather than per whole frame, so a later system in
// the same frame observes an earlier one's structural changes.
func (s *Scheduler) RunFrame(w *World) {
	totalConditions := 0
	for _, e := range s.entries {
		totalConditions += len(e.conditions)
	}
	s.conditionCache = NewSimpleCache[bool](totalConditions + 1)

	for _, id := range s.order {
		e := s.entry(id)
		if !s.passesConditions(w, e) {
			continue
		}

		w.Lock()
		cmd := NewCommandBuffer()
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.WithField("system", e.name).WithField("panic", fmt.Sprintf("%v", r)).Error("system panicked")
				}
			}()
			e.fn(w, cmd)
		}()
		w.Unlock()
		cmd.Apply(w)
	}
}

// passesConditions evaluates e's run conditions, consulting the per-frame
// cache by each condition's function identity first — so a RunCondition
// value shared across several systems (spec §4.10 step 4) only actually
// runs once per frame, regardless of how many systems reference it.
func (s *Scheduler) passesConditions(w *World, e *systemEntry) bool {
	for _, cond := range e.conditions {
		key := conditionKey(cond)
		if idx, ok := s.conditionCache.GetIndex(key); ok {
			if !*s.conditionCache.GetItem(idx) {
				return false
			}
			continue
		}
		result := cond(w)
		s.conditionCache.Register(key, result)
		if !result {
			return false
		}
	}
	return true
}

// conditionKey identifies a RunCondition by its function pointer, the
// closest Go equivalent of cubos's per-condition identity: two systems
// passed the same condition value share a cache slot, while two separately
// constructed closures (even with identical bodies) do not.
func conditionKey(cond RunCondition) string {
	return fmt.Sprintf("%p", cond)
}
