package ecs

import (
	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// SparseRelationTableId identifies one sparse relation table: the relation
// type, the archetypes of its "from" and "to" endpoints, and (for tree
// relations only) the depth of the edges it stores. Mirrors
// cubos::core::ecs::SparseRelationTableId from the original engine, adapted
// to the Go archetype-graph types used throughout this package (spec SS4.5).
type SparseRelationTableId struct {
	DataType DataTypeId
	From     ArchetypeId
	To       ArchetypeId
	Depth    int
}

// relationRow is one stored edge: the pair of entities. Its payload value,
// if the relation type carries one, lives at the same row index in the
// owning sparseRelationTable's tbl, the same row-alignment convention
// DenseTable uses for its entities/table pairing.
type relationRow struct {
	from Entity
	to   Entity
}

// sparseRelationTable holds every edge of one SparseRelationTableId, with
// dual hash indices so both "everything out of entity X" and "everything
// into entity Y" resolve without a scan (spec SS4.5).
type sparseRelationTable struct {
	id   SparseRelationTableId
	tbl  table.Table // payload storage, row-aligned with rows below; may be nil for zero-sized relations
	rows []relationRow

	byFrom map[Entity][]int
	byTo   map[Entity][]int
}

func newSparseRelationTable(id SparseRelationTableId, tbl table.Table) *sparseRelationTable {
	return &sparseRelationTable{
		id:     id,
		tbl:    tbl,
		byFrom: make(map[Entity][]int),
		byTo:   make(map[Entity][]int),
	}
}

// appendRow records bookkeeping for a row whose payload entry already exists
// in t.tbl (or has none), used both by insert (fresh edge) and by callers
// that have already moved a payload row in via table.Table.TransferEntries
// (archetype/depth re-keying) and just need the index kept in sync.
func (t *sparseRelationTable) appendRow(from, to Entity) int {
	row := len(t.rows)
	t.rows = append(t.rows, relationRow{from: from, to: to})
	t.byFrom[from] = append(t.byFrom[from], row)
	t.byTo[to] = append(t.byTo[to], row)
	return row
}

// insert appends a brand new edge, allocating its payload row in t.tbl too
// (spec SS3, SS4.5: a relation's value is stored the same way a dense
// table's component column is, not dropped on the floor).
func (t *sparseRelationTable) insert(from, to Entity) (int, error) {
	if t.tbl != nil {
		if _, err := t.tbl.NewEntries(1); err != nil {
			return 0, err
		}
	}
	return t.appendRow(from, to), nil
}

// eraseRow removes the edge at row via swap-with-last, keeping rows dense,
// without touching the payload table. Callers either migrate the payload
// elsewhere first (re-keying) or follow up with a tbl.DeleteEntries
// themselves (erase).
func (t *sparseRelationTable) eraseRow(row int) {
	last := len(t.rows) - 1
	removed := t.rows[row]
	t.removeIndex(t.byFrom, removed.from, row)
	t.removeIndex(t.byTo, removed.to, row)

	if row != last {
		moved := t.rows[last]
		t.rows[row] = moved
		t.reindex(t.byFrom, moved.from, last, row)
		t.reindex(t.byTo, moved.to, last, row)
	}
	t.rows = t.rows[:last]
}

// erase removes the edge at row from both the bookkeeping index and the
// payload table.
func (t *sparseRelationTable) erase(row int) {
	t.eraseRow(row)
	if t.tbl != nil {
		t.tbl.DeleteEntries(row)
	}
}

func (t *sparseRelationTable) removeIndex(idx map[Entity][]int, key Entity, row int) {
	rows := idx[key]
	for i, r := range rows {
		if r == row {
			rows[i] = rows[len(rows)-1]
			rows = rows[:len(rows)-1]
			break
		}
	}
	if len(rows) == 0 {
		delete(idx, key)
	} else {
		idx[key] = rows
	}
}

func (t *sparseRelationTable) reindex(idx map[Entity][]int, key Entity, from, to int) {
	rows := idx[key]
	for i, r := range rows {
		if r == from {
			rows[i] = to
		}
	}
}

// rowsFrom returns every row index with the given "from" entity.
func (t *sparseRelationTable) rowsFrom(e Entity) []int { return t.byFrom[e] }

// rowsTo returns every row index with the given "to" entity.
func (t *sparseRelationTable) rowsTo(e Entity) []int { return t.byTo[e] }

// relationMatch pairs a matched edge's partner entity with the payload
// table and row index holding its value, letting a typed caller (Outgoing,
// Incoming) decode the value without this file needing to know T.
type relationMatch struct {
	partner Entity
	tbl     table.Table
	row     int
}

// SparseRelationRegistry owns every sparseRelationTable, keyed by
// SparseRelationTableId, plus the bookkeeping needed to enforce tree-relation
// invariants (at most one outgoing edge per entity, no cycles, depth equal
// to the BFS distance to the edge's root).
type SparseRelationRegistry struct {
	schema     table.Schema
	types      *TypeRegistry
	tables     map[SparseRelationTableId]*sparseRelationTable
	treeParent map[Entity]Entity // tree relations only: current outgoing edge target, if any
	treeDepth  map[Entity]int
}

// NewSparseRelationRegistry constructs an empty registry.
func NewSparseRelationRegistry(schema table.Schema, types *TypeRegistry) *SparseRelationRegistry {
	return &SparseRelationRegistry{
		schema:     schema,
		types:      types,
		tables:     make(map[SparseRelationTableId]*sparseRelationTable),
		treeParent: make(map[Entity]Entity),
		treeDepth:  make(map[Entity]int),
	}
}

func (r *SparseRelationRegistry) ensure(id SparseRelationTableId) *sparseRelationTable {
	if t, ok := r.tables[id]; ok {
		return t
	}
	info := r.types.Type(id.DataType)
	tbl, err := table.NewTableBuilder().
		WithSchema(r.schema).
		WithEntryIndex(table.Factory.NewEntryIndex()).
		WithElementTypes(info.Element).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		tbl = nil
	}
	t := newSparseRelationTable(id, tbl)
	r.tables[id] = t
	return t
}

// Relate records an edge from -> to for relation type dt between entities
// currently in archetypes fromArch/toArch, writing a payload value (if set
// is non-nil) into the edge's row the same way SetComponent writes a dense
// table column. For tree relations, it enforces the forest invariant (a
// single outgoing edge per entity, no cycles) before inserting, recomputes
// from's depth by walking to the new parent's depth, and — when that depth
// actually changes — re-keys every descendant's own edge into the table
// matching its new depth via a breadth-first walk (spec SS4.5 property #6).
func (r *SparseRelationRegistry) Relate(dt DataTypeId, from, to Entity, fromArch, toArch ArchetypeId, set func(tbl table.Table, row int)) (int, error) {
	kind := r.types.Kind(dt)

	if kind == KindTreeRelation {
		if from == to {
			return 0, bark.AddTrace(CyclicRelationError{From: from, To: to})
		}
		if r.wouldCycle(from, to) {
			return 0, bark.AddTrace(CyclicRelationError{From: from, To: to})
		}
		oldDepth := r.treeDepth[from]
		if prev, ok := r.treeParent[from]; ok {
			r.Unrelate(dt, from, prev, fromArch, toArch)
		}
		r.treeParent[from] = to
		r.treeDepth[from] = r.treeDepth[to] + 1
		if newDepth := r.treeDepth[from]; newDepth != oldDepth {
			r.recomputeDescendantDepths(from, oldDepth, newDepth)
		}
	}

	canonFrom, canonTo := r.canonicalOrder(kind, from, to)
	id := SparseRelationTableId{DataType: dt, From: fromArch, To: toArch, Depth: r.depthFor(kind, canonFrom)}
	t := r.ensure(id)
	row, err := t.insert(canonFrom, canonTo)
	if err != nil {
		return 0, err
	}
	if set != nil && t.tbl != nil {
		set(t.tbl, row)
	}
	return row, nil
}

// canonicalOrder orders (from,to) by Entity.Index so a symmetric relation is
// stored under one canonical table entry regardless of call order.
func (r *SparseRelationRegistry) canonicalOrder(kind TypeKind, from, to Entity) (Entity, Entity) {
	if kind != KindSymmetricRelation {
		return from, to
	}
	if to.Index < from.Index {
		return to, from
	}
	return from, to
}

func (r *SparseRelationRegistry) depthFor(kind TypeKind, from Entity) int {
	if kind != KindTreeRelation {
		return 0
	}
	return r.treeDepth[from]
}

// wouldCycle reports whether adding an edge from -> to would create a cycle
// in the tree-relation forest, by walking up to's ancestor chain looking for
// from.
func (r *SparseRelationRegistry) wouldCycle(from, to Entity) bool {
	cursor := to
	for {
		parent, ok := r.treeParent[cursor]
		if !ok {
			return false
		}
		if parent == from {
			return true
		}
		cursor = parent
	}
}

// recomputeDescendantDepths walks root's descendants breadth-first, shifting
// each by the delta root's own depth just moved by, and re-keys each
// descendant's outgoing edge into the sparse table matching its new depth.
// Terminates because the forest root participates in has no cycles.
func (r *SparseRelationRegistry) recomputeDescendantDepths(root Entity, oldRootDepth, newRootDepth int) {
	delta := newRootDepth - oldRootDepth
	if delta == 0 {
		return
	}
	queue := []Entity{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for child, p := range r.treeParent {
			if p != parent {
				continue
			}
			oldChildDepth := r.treeDepth[child]
			newChildDepth := oldChildDepth + delta
			r.treeDepth[child] = newChildDepth
			r.rekeyEdgeDepth(child, oldChildDepth, newChildDepth)
			queue = append(queue, child)
		}
	}
}

// rekeyEdgeDepth moves child's single outgoing edge (if any) from the table
// keyed by oldDepth into the table keyed by newDepth, migrating its payload
// row via table.Table.TransferEntries the same way World.migrate moves a
// component row between archetype tables.
func (r *SparseRelationRegistry) rekeyEdgeDepth(child Entity, oldDepth, newDepth int) {
	for id, t := range r.tables {
		if id.Depth != oldDepth {
			continue
		}
		rows := t.rowsFrom(child)
		if len(rows) == 0 {
			continue
		}
		row := rows[0]
		pair := t.rows[row]

		newID := id
		newID.Depth = newDepth
		newT := r.ensure(newID)

		if t.tbl != nil && newT.tbl != nil {
			if err := t.tbl.TransferEntries(newT.tbl, row); err != nil {
				return
			}
		}
		t.eraseRow(row)
		newT.appendRow(pair.from, pair.to)
		return
	}
}

// Unrelate removes the edge from -> to for relation type dt, if present.
func (r *SparseRelationRegistry) Unrelate(dt DataTypeId, from, to Entity, fromArch, toArch ArchetypeId) {
	kind := r.types.Kind(dt)
	canonFrom, canonTo := r.canonicalOrder(kind, from, to)
	id := SparseRelationTableId{DataType: dt, From: fromArch, To: toArch, Depth: r.depthFor(kind, canonFrom)}
	if kind == KindTreeRelation {
		if r.treeParent[from] == to {
			delete(r.treeParent, from)
			delete(r.treeDepth, from)
		}
	}

	t, ok := r.tables[id]
	if !ok {
		return
	}
	for _, row := range t.rowsFrom(canonFrom) {
		if t.rows[row].to == canonTo {
			t.erase(row)
			return
		}
	}
}

// UnrelateAll removes every edge touching entity e, across every relation
// table, used when an entity is destroyed.
func (r *SparseRelationRegistry) UnrelateAll(e Entity) {
	delete(r.treeParent, e)
	delete(r.treeDepth, e)
	var orphans []Entity
	for child, parent := range r.treeParent {
		if parent == e {
			orphans = append(orphans, child)
		}
	}
	for _, child := range orphans {
		oldDepth := r.treeDepth[child]
		delete(r.treeParent, child)
		delete(r.treeDepth, child)
		r.recomputeDescendantDepths(child, oldDepth, 0)
	}
	for _, t := range r.tables {
		for {
			rows := append(append([]int{}, t.rowsFrom(e)...), t.rowsTo(e)...)
			if len(rows) == 0 {
				break
			}
			t.erase(rows[0])
		}
	}
}

// OnArchetypeChange re-keys every relation triple referencing entity e into
// the table matching its new archetype, after its row migrates from oldArch
// to newArch (spec SS4.5's on_archetype_change). Each matching edge's
// payload row is moved via table.Table.TransferEntries, the same mechanism
// World.migrate uses to move a component column between archetype tables,
// so a relation's value survives its endpoint gaining or losing a component.
func (r *SparseRelationRegistry) OnArchetypeChange(e Entity, oldArch, newArch ArchetypeId) {
	if oldArch == newArch {
		return
	}

	var fromIDs, toIDs []SparseRelationTableId
	for id := range r.tables {
		if id.From == oldArch {
			fromIDs = append(fromIDs, id)
		}
		if id.To == oldArch {
			toIDs = append(toIDs, id)
		}
	}

	for _, id := range fromIDs {
		r.relocateEndpoint(id, e, true, newArch)
	}
	for _, id := range toIDs {
		r.relocateEndpoint(id, e, false, newArch)
	}
}

// relocateEndpoint moves every row in table id where e occupies the "from"
// (fromSide) or "to" endpoint into the equivalent table keyed with that
// endpoint's archetype updated to newArch, preserving the row's payload
// value and the other endpoint untouched.
func (r *SparseRelationRegistry) relocateEndpoint(id SparseRelationTableId, e Entity, fromSide bool, newArch ArchetypeId) {
	t, ok := r.tables[id]
	if !ok {
		return
	}
	newID := id
	if fromSide {
		newID.From = newArch
	} else {
		newID.To = newArch
	}
	newT := r.ensure(newID)

	for {
		var rows []int
		if fromSide {
			rows = t.rowsFrom(e)
		} else {
			rows = t.rowsTo(e)
		}
		if len(rows) == 0 {
			return
		}
		row := rows[0]
		pair := t.rows[row]

		if t.tbl != nil && newT.tbl != nil {
			if err := t.tbl.TransferEntries(newT.tbl, row); err != nil {
				return
			}
		}
		t.eraseRow(row)
		newT.appendRow(pair.from, pair.to)
	}
}

// valueRow locates the row (and its payload table) holding the edge
// from -> to for relation dt, if one exists.
func (r *SparseRelationRegistry) valueRow(dt DataTypeId, from, to Entity) (table.Table, int, bool) {
	kind := r.types.Kind(dt)
	canonFrom, canonTo := r.canonicalOrder(kind, from, to)
	for id, t := range r.tables {
		if id.DataType != dt {
			continue
		}
		for _, row := range t.rowsFrom(canonFrom) {
			if t.rows[row].to == canonTo {
				return t.tbl, row, true
			}
		}
	}
	return nil, 0, false
}

// Related reports whether an edge from -> to of relation type dt currently
// exists, used by the query engine to verify a join candidate without
// materializing the full RelatedTo slice.
func (r *SparseRelationRegistry) Related(dt DataTypeId, from, to Entity) bool {
	_, _, ok := r.valueRow(dt, from, to)
	return ok
}

// outgoingRows returns every row where e is the relation's "from" endpoint,
// plus (for symmetric relations, whose canonical storage may have placed e
// on either side) every row where e is the "to" endpoint, each paired with
// its payload table and row index.
func (r *SparseRelationRegistry) outgoingRows(dt DataTypeId, e Entity) []relationMatch {
	symmetric := r.types.Kind(dt) == KindSymmetricRelation
	var out []relationMatch
	for id, t := range r.tables {
		if id.DataType != dt {
			continue
		}
		for _, row := range t.rowsFrom(e) {
			out = append(out, relationMatch{partner: t.rows[row].to, tbl: t.tbl, row: row})
		}
		if symmetric {
			for _, row := range t.rowsTo(e) {
				out = append(out, relationMatch{partner: t.rows[row].from, tbl: t.tbl, row: row})
			}
		}
	}
	return out
}

// incomingRows is outgoingRows' mirror: every row where e is the "to"
// endpoint, plus (for symmetric relations) every row where e is the "from"
// endpoint.
func (r *SparseRelationRegistry) incomingRows(dt DataTypeId, e Entity) []relationMatch {
	symmetric := r.types.Kind(dt) == KindSymmetricRelation
	var out []relationMatch
	for id, t := range r.tables {
		if id.DataType != dt {
			continue
		}
		for _, row := range t.rowsTo(e) {
			out = append(out, relationMatch{partner: t.rows[row].from, tbl: t.tbl, row: row})
		}
		if symmetric {
			for _, row := range t.rowsFrom(e) {
				out = append(out, relationMatch{partner: t.rows[row].to, tbl: t.tbl, row: row})
			}
		}
	}
	return out
}

// RelatedTo returns every entity e relates to via relation dt. For a
// symmetric relation, canonicalOrder may have stored e on either side of
// the edge (whichever entity had the smaller Index at Relate time), so both
// directions are consulted; a plain or tree relation only ever means "e's
// outgoing edges".
func (r *SparseRelationRegistry) RelatedTo(dt DataTypeId, e Entity) []Entity {
	matches := r.outgoingRows(dt, e)
	out := make([]Entity, len(matches))
	for i, m := range matches {
		out[i] = m.partner
	}
	return out
}

// RelatedFrom returns every entity that relates to e via relation dt, i.e.
// the reverse of RelatedTo — used by the query engine when a join drives
// from a relation's "to" endpoint. Symmetric relations consult both
// directions for the same reason RelatedTo does.
func (r *SparseRelationRegistry) RelatedFrom(dt DataTypeId, e Entity) []Entity {
	matches := r.incomingRows(dt, e)
	out := make([]Entity, len(matches))
	for i, m := range matches {
		out[i] = m.partner
	}
	return out
}

// Depth returns a tree-relation entity's current depth (0 for roots and for
// entities with no recorded parent).
func (r *SparseRelationRegistry) Depth(e Entity) int {
	return r.treeDepth[e]
}
