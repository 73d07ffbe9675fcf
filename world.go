package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// World is the runtime facade: it owns the entity pool, the archetype
// graph, the dense component tables, the sparse relation tables and the
// observer registry, and is the single point every create/destroy/add/
// remove/relate operation flows through so observers fire consistently
// (spec SS4.6). Mirrors the teacher's storage struct, generalized from a
// package-level Storage interface with a package-global entry index to an
// explicit, constructible value with no package-level mutable state.
type World struct {
	schema table.Schema
	types  *TypeRegistry
	pool   *EntityPool
	graph  *ArchetypeGraph
	dense  *DenseTableRegistry
	rel    *SparseRelationRegistry
	obs    *ObserverRegistry
	res    *ResourceStore
	config RuntimeConfig
	log    Logger

	locked bool
}

// NewWorld constructs an empty world sharing one table.Schema across every
// dense and sparse relation table, the way the teacher shares one schema
// across every archetype via Storage.schema.
func NewWorld(config RuntimeConfig, log Logger) *World {
	if log == nil {
		log = NopLogger()
	}
	schema := table.Factory.NewSchema()
	types := NewTypeRegistry()
	w := &World{
		schema: schema,
		types:  types,
		pool:   NewEntityPool(),
		graph:  NewArchetypeGraph(schema),
		rel:    NewSparseRelationRegistry(schema, types),
		obs:    NewObserverRegistry(config.ObserverRecursionLimit),
		res:    NewResourceStore(),
		config: config,
		log:    log,
	}
	w.dense = NewDenseTableRegistry(schema, table.Factory.NewEntryIndex(), types)
	return w
}

// Types exposes the world's type registry, e.g. for RegisterComponent calls
// made before the world starts running systems.
func (w *World) Types() *TypeRegistry { return w.types }

// Resources exposes the world's resource store.
func (w *World) Resources() *ResourceStore { return w.res }

// Lock marks the world as mid-iteration: structural mutation must be
// deferred through a CommandBuffer rather than applied directly. Mirrors
// the teacher's storage.Locked()/AddLock, simplified from a bitmask of
// concurrent readers to a single flag since systems run single-threaded
// per schedule stage (spec SS4.10).
func (w *World) Lock()         { w.locked = true }
func (w *World) Unlock()       { w.locked = false }
func (w *World) Locked() bool  { return w.locked }

// Create spawns n entities with no components, all in the empty archetype,
// and returns their Entity handles.
func (w *World) Create(n int) ([]Entity, error) {
	if w.locked {
		return nil, bark.AddTrace(LockedWorldError{})
	}
	dt, err := w.dense.Ensure(EmptyArchetypeId, w.graph)
	if err != nil {
		return nil, err
	}
	entries, err := dt.table.NewEntries(n)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, n)
	for i, entry := range entries {
		e := w.pool.Create(EmptyArchetypeId, entry)
		dt.pushEntity(e)
		out[i] = e
	}
	return out, nil
}

// Destroy removes entity from the world: it is unrelated from every
// relation it participates in, erased from its dense table, and its pool
// slot is recycled. Observers' OnRemove hooks fire for every column the
// entity carried, in registration order, before the row is actually
// erased (spec SS4.9's ordering requirement).
func (w *World) Destroy(entity Entity) error {
	if w.locked {
		return bark.AddTrace(LockedWorldError{})
	}
	if !w.pool.Contains(entity) {
		return bark.AddTrace(StaleEntityError{Entity: entity})
	}

	arch := w.pool.Archetype(entity.Index)
	for _, col := range w.graph.Columns(arch) {
		w.obs.notifyRemove(w, col, entity)
	}
	w.rel.UnrelateAll(entity)

	dt, err := w.dense.At(arch)
	if err != nil {
		return err
	}
	row := w.pool.Row(entity.Index)
	idx := row.Index()
	dt.eraseEntity(idx)
	if _, err := dt.table.DeleteEntries(idx); err != nil {
		return err
	}
	w.pool.Destroy(entity.Index)
	return nil
}

// Has reports whether entity currently carries column col.
func (w *World) Has(entity Entity, col DataTypeId) bool {
	if !w.pool.Contains(entity) {
		return false
	}
	return w.graph.Contains(w.pool.Archetype(entity.Index), col)
}

// Generation returns the current generation counter for an entity's pool
// slot, used by callers that need to detect staleness without a full
// Contains check (spec SS4.2).
func (w *World) Generation(index uint32) uint32 {
	return w.pool.Generation(index)
}

// Add attaches a zero-valued component/relation-marker column to entity,
// migrating it to the archetype graph's With(col) destination and
// transferring its row into that archetype's dense table. Firing order:
// the row moves first, then OnAdd observers see the fully migrated entity,
// matching the teacher's AddComponent (transfer, then nothing further to
// observe since the teacher has no observer layer; this package adds the
// notification spec SS4.9 requires).
func (w *World) Add(entity Entity, col DataTypeId) error {
	if w.locked {
		return bark.AddTrace(LockedWorldError{})
	}
	if !w.pool.Contains(entity) {
		return bark.AddTrace(StaleEntityError{Entity: entity})
	}
	if !w.types.Contains(col) {
		return bark.AddTrace(UnknownTypeError{ID: col})
	}

	srcArch := w.pool.Archetype(entity.Index)
	if w.graph.Contains(srcArch, col) {
		return nil
	}
	info := w.types.Type(col)
	dstArch := w.graph.With(srcArch, col, info.Element)

	if err := w.migrate(entity, srcArch, dstArch); err != nil {
		return err
	}
	w.obs.notifyAdd(w, col, entity)
	return nil
}

// Remove detaches a component/relation-marker column from entity, migrating
// it to the archetype graph's Without(col) destination. OnRemove observers
// fire before the row is transferred out, while the old value is still
// readable, mirroring hookOnRemove's documented "called right before the
// component is removed" contract in the original engine.
func (w *World) Remove(entity Entity, col DataTypeId) error {
	if w.locked {
		return bark.AddTrace(LockedWorldError{})
	}
	if !w.pool.Contains(entity) {
		return bark.AddTrace(StaleEntityError{Entity: entity})
	}

	srcArch := w.pool.Archetype(entity.Index)
	if !w.graph.Contains(srcArch, col) {
		return nil
	}
	w.obs.notifyRemove(w, col, entity)

	dstArch := w.graph.Without(srcArch, col)
	return w.migrate(entity, srcArch, dstArch)
}

// migrate moves entity's row from srcArch's dense table to dstArch's,
// updating the pool's archetype/row bookkeeping, the way the teacher's
// AddComponent/RemoveComponent call originTable.TransferEntries then
// re-resolve e.Index() against the destination table. Once the pool's
// archetype is updated, every sparse relation triple referencing entity is
// re-keyed to match (spec SS4.5's on_archetype_change), so a relation's
// stored value survives its endpoint gaining or losing a component.
func (w *World) migrate(entity Entity, srcArch, dstArch ArchetypeId) error {
	srcDT, err := w.dense.At(srcArch)
	if err != nil {
		return err
	}
	dstDT, err := w.dense.Ensure(dstArch, w.graph)
	if err != nil {
		return err
	}

	row := w.pool.Row(entity.Index)
	idx := row.Index()
	if err := srcDT.table.TransferEntries(dstDT.table, idx); err != nil {
		return err
	}
	srcDT.eraseEntity(idx)
	newIdx := dstDT.pushEntity(entity)

	newRow, err := dstDT.table.Entry(newIdx)
	if err != nil {
		return fmt.Errorf("ecs: resolving migrated entry for archetype %d: %w", dstArch, err)
	}
	w.pool.SetArchetype(entity.Index, dstArch, newRow)
	w.rel.OnArchetypeChange(entity, srcArch, dstArch)
	return nil
}

// Relate records an edge from -> to for relation type dt, validating both
// entities are alive and dt names a registered relation kind. The edge
// carries no payload value; use the package-level generic Relate[T] to
// record one.
func (w *World) Relate(dt DataTypeId, from, to Entity) error {
	return w.relate(dt, from, to, nil)
}

// relate is Relate's implementation, parameterized over an optional setter
// that writes a typed payload value into the edge's freshly inserted row.
// Relate[T] supplies a non-nil setter; World.Relate (marker relations) does
// not.
func (w *World) relate(dt DataTypeId, from, to Entity, set func(tbl table.Table, row int)) error {
	if w.locked {
		return bark.AddTrace(LockedWorldError{})
	}
	if !w.pool.Contains(from) || !w.pool.Contains(to) {
		return bark.AddTrace(StaleEntityError{Entity: from})
	}
	if !w.types.Contains(dt) {
		return bark.AddTrace(UnknownTypeError{ID: dt})
	}
	kind := w.types.Kind(dt)
	if kind != KindSymmetricRelation && kind != KindTreeRelation {
		return bark.AddTrace(TypeMismatchError{ID: dt, Expected: "relation", Got: kind.String()})
	}

	fromArch := w.pool.Archetype(from.Index)
	toArch := w.pool.Archetype(to.Index)
	if _, err := w.rel.Relate(dt, from, to, fromArch, toArch, set); err != nil {
		return err
	}
	w.obs.notifyRelated(w, dt, from, to)
	return nil
}

// Unrelate removes the edge from -> to for relation type dt, if present.
func (w *World) Unrelate(dt DataTypeId, from, to Entity) error {
	if w.locked {
		return bark.AddTrace(LockedWorldError{})
	}
	if !w.rel.Related(dt, from, to) {
		return nil
	}
	fromArch := w.pool.Archetype(from.Index)
	toArch := w.pool.Archetype(to.Index)
	w.obs.notifyUnrelated(w, dt, from, to)
	w.rel.Unrelate(dt, from, to, fromArch, toArch)
	return nil
}

