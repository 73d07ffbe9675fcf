package ecs

import (
	"github.com/TheBitDrifter/bark"
)

// ObserverId identifies a registered observer hook, returned by Hook so
// callers can later Unhook it.
type ObserverId uint32

// ObserverFunc runs in response to a column/relation notification. It
// receives the world (not locked during the call, so the observer may
// mutate it directly) and the entity the notification concerns.
type ObserverFunc func(w *World, entity Entity)

// RelationObserverFunc runs in response to a relate/unrelate notification.
type RelationObserverFunc func(w *World, from, to Entity)

type hook struct {
	id      ObserverId
	column  ColumnId
	onEnt   ObserverFunc
	onRel   RelationObserverFunc
	removed bool
}

// ObserverRegistry stores every OnAdd/OnRemove/OnRelated/OnUnrelated hook,
// invoking them in registration order (spec SS4.9). Mirrors
// cubos::core::ecs::Observers, generalized from compile-time System<void>
// observers to plain Go closures.
type ObserverRegistry struct {
	nextID ObserverId
	onAdd  map[DataTypeId][]*hook
	onRem  map[DataTypeId][]*hook
	onRel  map[DataTypeId][]*hook
	onUnr  map[DataTypeId][]*hook

	recursionLimit int
	depth          int
}

// NewObserverRegistry constructs an empty registry enforcing limit as the
// maximum observer call nesting depth (spec SS6's
// ECS_OBSERVER_RECURSION_LIMIT).
func NewObserverRegistry(limit int) *ObserverRegistry {
	return &ObserverRegistry{
		onAdd:          make(map[DataTypeId][]*hook),
		onRem:          make(map[DataTypeId][]*hook),
		onRel:          make(map[DataTypeId][]*hook),
		onUnr:          make(map[DataTypeId][]*hook),
		recursionLimit: limit,
	}
}

// HookOnAdd registers fn to run whenever column col is added to any entity.
func (o *ObserverRegistry) HookOnAdd(col DataTypeId, fn ObserverFunc) ObserverId {
	return o.register(o.onAdd, col, fn, nil)
}

// HookOnRemove registers fn to run whenever column col is removed from any
// entity, called while the component's old value is still readable.
func (o *ObserverRegistry) HookOnRemove(col DataTypeId, fn ObserverFunc) ObserverId {
	return o.register(o.onRem, col, fn, nil)
}

// HookOnRelated registers fn to run whenever a relation of type dt is
// created between two entities.
func (o *ObserverRegistry) HookOnRelated(dt DataTypeId, fn RelationObserverFunc) ObserverId {
	return o.registerRelation(o.onRel, dt, fn)
}

// HookOnUnrelated registers fn to run whenever a relation of type dt is
// removed between two entities.
func (o *ObserverRegistry) HookOnUnrelated(dt DataTypeId, fn RelationObserverFunc) ObserverId {
	return o.registerRelation(o.onUnr, dt, fn)
}

func (o *ObserverRegistry) register(into map[DataTypeId][]*hook, col DataTypeId, fn ObserverFunc, _ RelationObserverFunc) ObserverId {
	o.nextID++
	h := &hook{id: o.nextID, column: NewComponentColumn(col), onEnt: fn}
	into[col] = append(into[col], h)
	return h.id
}

func (o *ObserverRegistry) registerRelation(into map[DataTypeId][]*hook, dt DataTypeId, fn RelationObserverFunc) ObserverId {
	o.nextID++
	h := &hook{id: o.nextID, column: NewComponentColumn(dt), onRel: fn}
	into[dt] = append(into[dt], h)
	return h.id
}

// Unhook removes a previously registered observer, a no-op if id is
// unknown (already unhooked, or never existed).
func (o *ObserverRegistry) Unhook(id ObserverId) {
	for _, table := range []map[DataTypeId][]*hook{o.onAdd, o.onRem, o.onRel, o.onUnr} {
		for _, hooks := range table {
			for _, h := range hooks {
				if h.id == id {
					h.removed = true
				}
			}
		}
	}
}

func (o *ObserverRegistry) notifyAdd(w *World, col DataTypeId, entity Entity) {
	o.run(w, o.onAdd[col], entity, Entity{})
}

func (o *ObserverRegistry) notifyRemove(w *World, col DataTypeId, entity Entity) {
	o.run(w, o.onRem[col], entity, Entity{})
}

func (o *ObserverRegistry) notifyRelated(w *World, dt DataTypeId, from, to Entity) {
	o.run(w, o.onRel[dt], from, to)
}

func (o *ObserverRegistry) notifyUnrelated(w *World, dt DataTypeId, from, to Entity) {
	o.run(w, o.onUnr[dt], from, to)
}

// run invokes every live hook in registration order, tracking nesting depth
// so an observer that itself triggers further notifications cannot recurse
// past the configured limit.
func (o *ObserverRegistry) run(w *World, hooks []*hook, entity, related Entity) {
	if len(hooks) == 0 {
		return
	}
	o.depth++
	defer func() { o.depth-- }()
	if o.depth > o.recursionLimit {
		panic(bark.AddTrace(ObserverRecursionLimitExceededError{Limit: o.recursionLimit}))
	}

	for _, h := range hooks {
		if h.removed {
			continue
		}
		if h.onRel != nil {
			h.onRel(w, entity, related)
		} else if h.onEnt != nil {
			h.onEnt(w, entity)
		}
	}
}
