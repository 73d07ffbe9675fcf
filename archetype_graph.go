package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// ArchetypeId identifies an unordered set of component column ids. The
// empty set has a reserved id (EmptyArchetypeId); InvalidArchetypeId names
// "no archetype".
type ArchetypeId uint32

const (
	// InvalidArchetypeId names "no archetype".
	InvalidArchetypeId ArchetypeId = 0
	// EmptyArchetypeId is the reserved id for the archetype with no
	// columns at all.
	EmptyArchetypeId ArchetypeId = 1
)

// archetypeNode is one node of the graph: its canonical column set (as
// both a bitmask for fast superset tests and an ordered slice for stable
// dense-table column layout), plus cached one-step transitions.
type archetypeNode struct {
	id      ArchetypeId
	mask    mask.Mask
	columns []DataTypeId // enumeration order: first-added order

	withEdges    map[DataTypeId]ArchetypeId
	withoutEdges map[DataTypeId]ArchetypeId
}

// ArchetypeGraph canonicalises unordered sets of component column ids into
// ArchetypeIds and caches one-step add/remove transitions so that adding or
// removing a component is O(1) amortised (spec SS4.3).
type ArchetypeGraph struct {
	schema table.Schema
	bitOf  map[DataTypeId]uint32

	nodes   []archetypeNode // index 0 unused, index 1 is the empty archetype
	byMask  map[mask.Mask]ArchetypeId
	order   []ArchetypeId // insertion order, for incremental Collect
}

// NewArchetypeGraph constructs a graph with just the reserved empty
// archetype.
func NewArchetypeGraph(schema table.Schema) *ArchetypeGraph {
	g := &ArchetypeGraph{
		schema: schema,
		bitOf:  make(map[DataTypeId]uint32),
		byMask: make(map[mask.Mask]ArchetypeId),
	}
	g.nodes = append(g.nodes, archetypeNode{}) // 0: invalid placeholder
	empty := archetypeNode{
		id:           EmptyArchetypeId,
		withEdges:    make(map[DataTypeId]ArchetypeId),
		withoutEdges: make(map[DataTypeId]ArchetypeId),
	}
	g.nodes = append(g.nodes, empty)
	g.byMask[empty.mask] = EmptyArchetypeId
	g.order = append(g.order, EmptyArchetypeId)
	return g
}

// bitFor returns the schema bit for a component's DataTypeId, registering
// it with the shared table.Schema on first use (mirrors the teacher's
// `schema.Register(component); bit := schema.RowIndexFor(component)`
// pattern, generalized to run once per DataTypeId instead of once per
// static Component value).
func (g *ArchetypeGraph) bitFor(t DataTypeId, element table.ElementType) uint32 {
	if bit, ok := g.bitOf[t]; ok {
		return bit
	}
	g.schema.Register(element)
	bit := g.schema.RowIndexFor(element)
	g.bitOf[t] = bit
	return bit
}

func (g *ArchetypeGraph) node(a ArchetypeId) *archetypeNode {
	return &g.nodes[a]
}

// singleBit builds a one-bit mask.Mask for containment tests; mask.Mask
// exposes boolean set algebra (ContainsAll/Any/None) rather than a
// single-bit query, so membership tests go through a throwaway one-bit
// mask exactly like the teacher's query.go does for node masks.
func singleBit(bit uint32) mask.Mask {
	var m mask.Mask
	m.Mark(bit)
	return m
}

// With inserts col into a's column set and returns the canonical id for
// the result, creating a new node if this exact set has never been seen.
// Idempotent if col is already present.
func (g *ArchetypeGraph) With(a ArchetypeId, col DataTypeId, element table.ElementType) ArchetypeId {
	n := g.node(a)
	bit := g.bitFor(col, element)
	if n.mask.ContainsAll(singleBit(bit)) {
		return a
	}
	if dst, ok := n.withEdges[col]; ok {
		return dst
	}

	newMask := n.mask
	newMask.Mark(bit)
	if existing, ok := g.byMask[newMask]; ok {
		n.withEdges[col] = existing
		return existing
	}

	newColumns := make([]DataTypeId, len(n.columns), len(n.columns)+1)
	copy(newColumns, n.columns)
	newColumns = append(newColumns, col)

	id := ArchetypeId(len(g.nodes))
	newNode := archetypeNode{
		id:           id,
		mask:         newMask,
		columns:      newColumns,
		withEdges:    make(map[DataTypeId]ArchetypeId),
		withoutEdges: make(map[DataTypeId]ArchetypeId),
	}
	newNode.withoutEdges[col] = a
	g.nodes = append(g.nodes, newNode)
	g.byMask[newMask] = id
	g.order = append(g.order, id)

	n.withEdges[col] = id
	return id
}

// Without removes col from a's column set and returns the canonical id for
// the result. Idempotent if col is absent.
func (g *ArchetypeGraph) Without(a ArchetypeId, col DataTypeId) ArchetypeId {
	n := g.node(a)
	bit, known := g.bitOf[col]
	if !known || !n.mask.ContainsAll(singleBit(bit)) {
		return a
	}
	if dst, ok := n.withoutEdges[col]; ok {
		return dst
	}

	newMask := n.mask
	newMask.Unmark(bit)
	if existing, ok := g.byMask[newMask]; ok {
		n.withoutEdges[col] = existing
		return existing
	}

	newColumns := make([]DataTypeId, 0, len(n.columns)-1)
	for _, c := range n.columns {
		if c != col {
			newColumns = append(newColumns, c)
		}
	}

	id := ArchetypeId(len(g.nodes))
	newNode := archetypeNode{
		id:           id,
		mask:         newMask,
		columns:      newColumns,
		withEdges:    make(map[DataTypeId]ArchetypeId),
		withoutEdges: make(map[DataTypeId]ArchetypeId),
	}
	newNode.withEdges[col] = a
	g.nodes = append(g.nodes, newNode)
	g.byMask[newMask] = id
	g.order = append(g.order, id)

	n.withoutEdges[col] = id
	return id
}

// Contains reports whether archetype a's column set includes col.
func (g *ArchetypeGraph) Contains(a ArchetypeId, col DataTypeId) bool {
	bit, ok := g.bitOf[col]
	if !ok {
		return false
	}
	return g.node(a).mask.ContainsAll(singleBit(bit))
}

// Columns returns the columns of archetype a in stable enumeration order
// (the order in which they were first added during graph construction).
// Dense tables rely on this order to fix their column layout.
func (g *ArchetypeGraph) Columns(a ArchetypeId) []DataTypeId {
	return g.node(a).columns
}

// Mask returns the archetype's column-set bitmask, used by the query
// engine to test superset/subset relationships without walking the column
// slice.
func (g *ArchetypeGraph) Mask(a ArchetypeId) mask.Mask {
	return g.node(a).mask
}

// Collect appends every known archetype whose column set is a superset of
// a's column set, discovered since cursor, to out. It returns the new
// cursor so repeated calls incrementally pick up archetypes created since
// the last call (spec SS4.3, used by the query engine's lazy archetype
// node).
func (g *ArchetypeGraph) Collect(a ArchetypeId, out []ArchetypeId, cursor int) ([]ArchetypeId, int) {
	want := g.node(a).mask
	for i := cursor; i < len(g.order); i++ {
		id := g.order[i]
		if g.node(id).mask.ContainsAll(want) {
			out = append(out, id)
		}
	}
	return out, len(g.order)
}

// Len returns the number of known archetypes, including the empty one.
func (g *ArchetypeGraph) Len() int {
	return len(g.order)
}
