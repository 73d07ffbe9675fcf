package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/table"
)

// DenseTable is the dense, column-major storage for one archetype: an
// append-only array of EntityIds (the row keys) plus one array per
// component column, all arrays sharing the same length (spec SS3, SS4.4).
// It is a thin wrapper around the teacher's table.Table, which already
// implements columnar storage, entry migration and mask.Maskable.
type DenseTable struct {
	archetype ArchetypeId
	table     table.Table
	columns   []DataTypeId
	entities  []Entity // row-aligned with table's own rows
}

// Table exposes the backing table.Table, e.g. for mask.Maskable checks by
// the query engine.
func (d *DenseTable) Table() table.Table { return d.table }

// Archetype returns the ArchetypeId this dense table belongs to.
func (d *DenseTable) Archetype() ArchetypeId { return d.archetype }

// Length returns the number of rows currently stored.
func (d *DenseTable) Length() int { return d.table.Length() }

// EntityAt returns the Entity occupying row, for cursor iteration.
func (d *DenseTable) EntityAt(row int) Entity { return d.entities[row] }

// pushEntity records a newly appended row's owner; callers must append the
// matching row to d.table in the same call (via NewEntries or
// TransferEntries) so the two stay row-aligned.
func (d *DenseTable) pushEntity(e Entity) int {
	row := len(d.entities)
	d.entities = append(d.entities, e)
	return row
}

// eraseEntity removes row's owner via swap-with-last, mirroring the
// swap-remove every dense table in this package assumes DeleteEntries and
// TransferEntries perform on the underlying table.Table.
func (d *DenseTable) eraseEntity(row int) {
	last := len(d.entities) - 1
	d.entities[row] = d.entities[last]
	d.entities = d.entities[:last]
}

// DenseTableRegistry stores one dense table per archetype, created lazily.
type DenseTableRegistry struct {
	schema     table.Schema
	entryIndex table.EntryIndex
	registry   *TypeRegistry
	byArch     map[ArchetypeId]*DenseTable
}

// NewDenseTableRegistry constructs an empty registry sharing a schema,
// entry index and type registry with the rest of the world.
func NewDenseTableRegistry(schema table.Schema, entryIndex table.EntryIndex, registry *TypeRegistry) *DenseTableRegistry {
	return &DenseTableRegistry{
		schema:     schema,
		entryIndex: entryIndex,
		registry:   registry,
		byArch:     make(map[ArchetypeId]*DenseTable),
	}
}

// Ensure creates the dense table for archetype a lazily, adding one column
// per component column the archetype graph reports for a.
func (r *DenseTableRegistry) Ensure(a ArchetypeId, graph *ArchetypeGraph) (*DenseTable, error) {
	if dt, ok := r.byArch[a]; ok {
		return dt, nil
	}

	columns := graph.Columns(a)
	elementTypes := make([]table.ElementType, len(columns))
	for i, col := range columns {
		elementTypes[i] = r.registry.Type(col).Element
	}

	tbl, err := table.NewTableBuilder().
		WithSchema(r.schema).
		WithEntryIndex(r.entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, fmt.Errorf("ecs: building dense table for archetype %d: %w", a, err)
	}

	dt := &DenseTable{archetype: a, table: tbl, columns: columns}
	r.byArch[a] = dt
	return dt, nil
}

// At returns the existing dense table for archetype a, requiring it
// already exist.
func (r *DenseTableRegistry) At(a ArchetypeId) (*DenseTable, error) {
	dt, ok := r.byArch[a]
	if !ok {
		return nil, fmt.Errorf("ecs: no dense table for archetype %d", a)
	}
	return dt, nil
}

// All returns every dense table known to the registry, in map iteration
// order, which is not defined (callers that need determinism should sort
// by Archetype()).
func (r *DenseTableRegistry) All() []*DenseTable {
	out := make([]*DenseTable, 0, len(r.byArch))
	for _, dt := range r.byArch {
		out = append(out, dt)
	}
	return out
}
