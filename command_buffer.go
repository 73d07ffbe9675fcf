package ecs

// TempEntity addresses an entity a CommandBuffer has not yet created: either
// a real, already-alive Entity (constructed by TempEntityOf), or an index
// into the buffer's pending spawn list. Operations recorded against a
// pending spawn resolve against the real Entity once Apply creates it
// (spec SS4.7).
type TempEntity struct {
	real    Entity
	pending int // 1-based index into CommandBuffer.spawns; 0 means "real"
}

// TempEntityOf wraps an already-alive entity for use in buffer operations
// (e.g. relating a freshly spawned child to an existing parent).
func TempEntityOf(e Entity) TempEntity { return TempEntity{real: e} }

type spawnCmd struct {
	blueprint Blueprint
}

type destroyCmd struct {
	target TempEntity
}

type addCmd struct {
	target TempEntity
	apply  func(w *World, e Entity) error
}

type removeCmd struct {
	target TempEntity
	column DataTypeId
}

type relateCmd struct {
	dataType DataTypeId
	from, to TempEntity
	unrelate bool
}

type relateValueCmd struct {
	from, to TempEntity
	apply    func(w *World, from, to Entity) error
}

type deferCmd struct {
	fn func(w *World)
}

// CommandBuffer queues structural mutations recorded while a World is
// locked for iteration (inside a system or observer body) and replays them
// once the caller unlocks the world, mirroring the teacher corpus's
// Commands/Flush pattern (spec SS4.7). Entities spawned mid-buffer can be
// targeted by later operations in the same buffer via the TempEntity
// returned from Spawn, resolved against their real Entity at Apply time.
type CommandBuffer struct {
	spawns       []spawnCmd
	destroys     []destroyCmd
	adds         []addCmd
	removes      []removeCmd
	relates      []relateCmd
	relateValues []relateValueCmd
	defers       []deferCmd
}

// NewCommandBuffer constructs an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Spawn queues the creation of one entity from a blueprint, returning a
// TempEntity later operations in this buffer can target before Apply runs.
func (b *CommandBuffer) Spawn(bp Blueprint) TempEntity {
	b.spawns = append(b.spawns, spawnCmd{blueprint: bp})
	return TempEntity{pending: len(b.spawns)}
}

// Destroy queues destruction of target.
func (b *CommandBuffer) Destroy(target TempEntity) {
	b.destroys = append(b.destroys, destroyCmd{target: target})
}

// AddComponentDeferred queues apply to run against target's resolved
// Entity during Apply. The package-level AddComponentDeferred[T] uses it to
// defer an AddComponent[T] call with a value.
func (b *CommandBuffer) AddComponentDeferred(target TempEntity, apply func(w *World, e Entity) error) {
	b.adds = append(b.adds, addCmd{target: target, apply: apply})
}

// RemoveComponent queues removing column from target.
func (b *CommandBuffer) RemoveComponent(target TempEntity, column DataTypeId) {
	b.removes = append(b.removes, removeCmd{target: target, column: column})
}

// Relate queues relating from -> to via dataType.
func (b *CommandBuffer) Relate(dataType DataTypeId, from, to TempEntity) {
	b.relates = append(b.relates, relateCmd{dataType: dataType, from: from, to: to})
}

// Unrelate queues removing the from -> to edge for dataType.
func (b *CommandBuffer) Unrelate(dataType DataTypeId, from, to TempEntity) {
	b.relates = append(b.relates, relateCmd{dataType: dataType, from: from, to: to, unrelate: true})
}

// RelateWithValue queues relating from -> to via apply, which runs once both
// temp entities resolve to real entities. Used by RelateDeferred[T] to defer
// a value-carrying relation the way AddComponentDeferred defers a
// value-carrying component.
func (b *CommandBuffer) RelateWithValue(from, to TempEntity, apply func(w *World, from, to Entity) error) {
	b.relateValues = append(b.relateValues, relateValueCmd{from: from, to: to, apply: apply})
}

// Defer queues an arbitrary function to run against the world once every
// other queued operation in this buffer has applied, e.g. for a follow-up
// notification that itself needs a fully resolved entity set.
func (b *CommandBuffer) Defer(fn func(w *World)) {
	b.defers = append(b.defers, deferCmd{fn: fn})
}

// Apply replays the queued operations against w grouped by kind: spawns
// first (so later operations can resolve their TempEntity targets),
// followed by destroys, removes, adds, relation changes, value-carrying
// relation changes and finally deferred callbacks. Within one kind,
// operations run in record order; operations of different kinds do not
// run in the order they were recorded relative to each other. A spawned
// entity's blueprint records into its own CommandBuffer, which is applied
// by a recursive Apply right after that entity is created. Failed
// individual operations are logged and skipped rather than aborting the
// whole batch.
func (b *CommandBuffer) Apply(w *World) {
	resolved := make([]Entity, len(b.spawns))

	resolve := func(t TempEntity) (Entity, bool) {
		if t.pending == 0 {
			return t.real, true
		}
		e := resolved[t.pending-1]
		return e, !e.IsNil()
	}

	for i, cmd := range b.spawns {
		created, err := w.Create(1)
		if err != nil {
			w.log.WithField("error", err).Error("command buffer spawn failed")
			resolved[i] = NilEntity
			continue
		}
		resolved[i] = created[0]
		inner := NewCommandBuffer()
		cmd.blueprint.Apply(inner, TempEntityOf(created[0]))
		inner.Apply(w)
	}

	for _, cmd := range b.destroys {
		e, ok := resolve(cmd.target)
		if !ok {
			continue
		}
		if err := w.Destroy(e); err != nil {
			w.log.WithField("error", err).Error("command buffer destroy failed")
		}
	}

	for _, cmd := range b.removes {
		e, ok := resolve(cmd.target)
		if !ok {
			continue
		}
		if err := w.Remove(e, cmd.column); err != nil {
			w.log.WithField("error", err).Error("command buffer remove failed")
		}
	}

	for _, cmd := range b.adds {
		e, ok := resolve(cmd.target)
		if !ok {
			continue
		}
		if err := cmd.apply(w, e); err != nil {
			w.log.WithField("error", err).Error("command buffer add failed")
		}
	}

	for _, cmd := range b.relates {
		from, ok1 := resolve(cmd.from)
		to, ok2 := resolve(cmd.to)
		if !ok1 || !ok2 {
			continue
		}
		var err error
		if cmd.unrelate {
			err = w.Unrelate(cmd.dataType, from, to)
		} else {
			err = w.Relate(cmd.dataType, from, to)
		}
		if err != nil {
			w.log.WithField("error", err).Error("command buffer relate failed")
		}
	}

	for _, cmd := range b.relateValues {
		from, ok1 := resolve(cmd.from)
		to, ok2 := resolve(cmd.to)
		if !ok1 || !ok2 {
			continue
		}
		if err := cmd.apply(w, from, to); err != nil {
			w.log.WithField("error", err).Error("command buffer relate failed")
		}
	}

	for _, cmd := range b.defers {
		cmd.fn(w)
	}
}
