package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// Entity names a slot in the entity pool: index identifies the slot,
// generation distinguishes successive reuses of that slot. A looked-up
// entity is alive iff the pool slot at index stores the same generation
// (spec SS3).
type Entity struct {
	Index      uint32
	Generation uint32
}

// NilEntity is the sentinel meaning "none": both fields at their maximum.
var NilEntity = Entity{Index: ^uint32(0), Generation: ^uint32(0)}

// IsNil reports whether e is the sentinel "none" entity.
func (e Entity) IsNil() bool {
	return e == NilEntity
}

func (e Entity) String() string {
	if e.IsNil() {
		return "Entity(nil)"
	}
	return fmt.Sprintf("Entity(%d#%d)", e.Index, e.Generation)
}

// poolEntry is the entity pool's per-slot state: spec's
// "(generation: u32, archetype: ArchetypeId)", plus the live table.Entry
// handle the teacher's entity.go embeds directly on its entity struct.
// Keeping it out of Entity itself is what lets Entity stay a small
// copyable value instead of the teacher's heavier table.Entry-embedding
// object.
type poolEntry struct {
	generation uint32
	archetype  ArchetypeId
	row        table.Entry
	alive      bool
}

// EntityPool allocates and reuses entity indices with generation counters,
// and tracks the archetype and live dense-table row each entity currently
// occupies.
type EntityPool struct {
	entries []poolEntry
	free    []uint32 // FIFO of recyclable indices
}

// NewEntityPool constructs an empty pool.
func NewEntityPool() *EntityPool {
	return &EntityPool{}
}

// Create allocates a new entity in the given archetype and row, popping
// from the free queue (keeping the generation Destroy already bumped) or
// appending a new slot.
func (p *EntityPool) Create(archetype ArchetypeId, row table.Entry) Entity {
	if len(p.free) > 0 {
		index := p.free[0]
		p.free = p.free[1:]
		entry := &p.entries[index]
		entry.archetype = archetype
		entry.row = row
		entry.alive = true
		return Entity{Index: index, Generation: entry.generation}
	}

	index := uint32(len(p.entries))
	p.entries = append(p.entries, poolEntry{generation: 0, archetype: archetype, row: row, alive: true})
	return Entity{Index: index, Generation: 0}
}

// Destroy frees the pool slot at index, incrementing its generation so
// stale handles are detected. The caller must have already dropped all
// component/relation data referencing this entity.
func (p *EntityPool) Destroy(index uint32) {
	entry := &p.entries[index]
	entry.alive = false
	entry.generation++
	entry.archetype = InvalidArchetypeId
	p.free = append(p.free, index)
}

// Archetype returns the archetype currently associated with index.
func (p *EntityPool) Archetype(index uint32) ArchetypeId {
	return p.entries[index].archetype
}

// SetArchetype updates the archetype and live row associated with index,
// used whenever an entity migrates between dense tables.
func (p *EntityPool) SetArchetype(index uint32, arch ArchetypeId, row table.Entry) {
	p.entries[index].archetype = arch
	p.entries[index].row = row
}

// Row returns the live table.Entry handle for index, giving direct access
// to the entity's current table and row within it (mirrors the teacher's
// entity.entry(), generalized to look the handle up from the pool instead
// of from a package-global entry index keyed by a static entity id).
func (p *EntityPool) Row(index uint32) table.Entry {
	return p.entries[index].row
}

// Generation returns the current generation of a pool slot, used for
// handle validation.
func (p *EntityPool) Generation(index uint32) uint32 {
	if int(index) >= len(p.entries) {
		return 0
	}
	return p.entries[index].generation
}

// Contains reports whether entity names a currently alive slot.
func (p *EntityPool) Contains(entity Entity) bool {
	if entity.IsNil() || int(entity.Index) >= len(p.entries) {
		return false
	}
	entry := p.entries[entity.Index]
	return entry.alive && entry.generation == entity.Generation
}

// Size returns the number of alive entities in the pool.
func (p *EntityPool) Size() int {
	return len(p.entries) - len(p.free)
}

// mustContain panics with a stale-entity diagnostic if entity is not
// alive. Internal callers that have already validated liveness at the
// public API boundary use this to turn corruption into a loud failure
// rather than a silent wrong answer.
func (p *EntityPool) mustContain(entity Entity) {
	if !p.Contains(entity) {
		panic(bark.AddTrace(StaleEntityError{Entity: entity}))
	}
}
