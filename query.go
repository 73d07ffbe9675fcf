package ecs

// Target identifies one bound entity variable within a Query's declarative
// filter (spec SS4.8). A query over a single component stream uses one
// target; a query that joins across a relation binds two.
type Target int

// clauseKind discriminates the filter language's four clause shapes.
type clauseKind int

const (
	clauseWith clauseKind = iota
	clauseWithout
	clauseRelation
	clauseOptional
)

// Clause is one constraint in a Query's declarative filter. Clauses are
// combined by conjunction: a Query is the AND of every clause passed to
// NewQuery, mirroring the teacher's leafNode/compositeNode AND semantics
// generalized from a single implicit target to the spec's multi-target
// filter language.
type Clause struct {
	kind clauseKind
	target,
	from, to Target
	typ DataTypeId
}

// With requires target's archetype to contain the component column typ.
func With(target Target, typ DataTypeId) Clause {
	return Clause{kind: clauseWith, target: target, typ: typ}
}

// Without requires target's archetype to NOT contain the component column typ.
func Without(target Target, typ DataTypeId) Clause {
	return Clause{kind: clauseWithout, target: target, typ: typ}
}

// Relation requires a relation edge of type typ to exist with fromTarget and
// toTarget bound to its two endpoints.
func Relation(typ DataTypeId, fromTarget, toTarget Target) Clause {
	return Clause{kind: clauseRelation, typ: typ, from: fromTarget, to: toTarget}
}

// Optional fetches component typ on target when present, without
// constraining which archetypes match.
func Optional(typ DataTypeId, target Target) Clause {
	return Clause{kind: clauseOptional, target: target, typ: typ}
}

// targetPlan accumulates one target's With/Without/Optional clauses before
// compilation into a queryNode.
type targetPlan struct {
	target       Target
	withCols     []DataTypeId
	withoutCols  []DataTypeId
	optionalCols []DataTypeId
	node         *queryNode
}

// relationPlan is one compiled Relation(typ, from, to) clause.
type relationPlan struct {
	typ  DataTypeId
	from Target
	to   Target
	node *relationNode
}

// Query is a compiled filter: one queryNode per bound target plus zero
// or more relationNode joins between them. It is built once (NewQuery) and
// iterated many times via Cursor; archetypes created after compilation are
// still picked up, since queryNode.update() advances an incremental
// cursor into the ArchetypeGraph rather than snapshotting at compile time
// (spec SS4.8's laziness requirement).
type Query struct {
	world     *World
	order     []Target // first-appearance order, for deterministic iteration
	targets   map[Target]*targetPlan
	relations []relationPlan
}

// NewQuery compiles clauses into a Query bound to world. Target ids need not
// be contiguous or start at zero; they are just map keys distinguishing the
// clauses' bound variables.
func NewQuery(world *World, clauses ...Clause) *Query {
	q := &Query{
		world:   world,
		targets: make(map[Target]*targetPlan),
	}

	ensure := func(t Target) *targetPlan {
		if p, ok := q.targets[t]; ok {
			return p
		}
		p := &targetPlan{target: t}
		q.targets[t] = p
		q.order = append(q.order, t)
		return p
	}

	for _, c := range clauses {
		switch c.kind {
		case clauseWith:
			p := ensure(c.target)
			p.withCols = append(p.withCols, c.typ)
		case clauseWithout:
			p := ensure(c.target)
			p.withoutCols = append(p.withoutCols, c.typ)
		case clauseOptional:
			p := ensure(c.target)
			p.optionalCols = append(p.optionalCols, c.typ)
		case clauseRelation:
			ensure(c.from)
			ensure(c.to)
			q.relations = append(q.relations, relationPlan{typ: c.typ, from: c.from, to: c.to})
		}
	}

	for _, t := range q.order {
		p := q.targets[t]
		p.node = newQueryNode(world, p.withCols, p.withoutCols)
	}
	for i := range q.relations {
		rp := &q.relations[i]
		rp.node = newRelationNode(world, rp.typ, q.targets[rp.from].node, q.targets[rp.to].node)
	}

	return q
}

// Cursor starts a fresh iteration over q. Queries are reusable: calling
// Cursor again after mutating the world reflects any entities created or
// migrated since the last call, since it re-runs each target's lazy
// archetype collection before iterating (spec SS4.8).
func (q *Query) Cursor() *Cursor {
	return NewCursor(q)
}

// queryNode enumerates archetypes whose column set is a superset of
// withCols and that contain none of withoutCols, updating lazily from the
// ArchetypeGraph's incremental Collect cursor (spec SS4.8).
type queryNode struct {
	world       *World
	withCols    []DataTypeId
	withoutCols []DataTypeId
	base        ArchetypeId
	matches     []ArchetypeId
	graphCursor int
}

func newQueryNode(world *World, withCols, withoutCols []DataTypeId) *queryNode {
	base := EmptyArchetypeId
	for _, col := range withCols {
		element := world.types.Type(col).Element
		base = world.graph.With(base, col, element)
	}
	n := &queryNode{world: world, withCols: withCols, withoutCols: withoutCols, base: base}
	n.update()
	return n
}

// update advances the node's view of the archetype graph, appending any
// archetype created since the last call that satisfies the node's
// constraints. Safe to call repeatedly; a no-op once the graph is caught up.
func (n *queryNode) update() {
	collected, cursor := n.world.graph.Collect(n.base, nil, n.graphCursor)
	n.graphCursor = cursor
	for _, id := range collected {
		if n.excluded(id) {
			continue
		}
		n.matches = append(n.matches, id)
	}
}

func (n *queryNode) excluded(id ArchetypeId) bool {
	for _, col := range n.withoutCols {
		if n.world.graph.Contains(id, col) {
			return true
		}
	}
	return false
}

// estimate returns an upper bound on the number of rows this node could
// yield, summed across every matched archetype's current dense-table
// length. Used only to pick a relation join's driving side; not a
// correctness property (spec SS4.8).
func (n *queryNode) estimate() int {
	total := 0
	for _, id := range n.matches {
		dt, err := n.world.dense.At(id)
		if err != nil {
			continue
		}
		total += dt.Length()
	}
	return total
}

// contains reports whether archetype id is one of this node's current
// matches, used by the relation join to confirm a candidate partner
// satisfies the other target's own With/Without constraints.
func (n *queryNode) contains(id ArchetypeId) bool {
	for _, m := range n.matches {
		if m == id {
			return true
		}
	}
	return false
}

// relationNode joins two archetypeNodes across a relation type, walking the
// sparse relation tables rather than re-deriving edges from component data
// (spec SS4.8).
type relationNode struct {
	world *World
	typ   DataTypeId
	from  *queryNode
	to    *queryNode
}

func newRelationNode(world *World, typ DataTypeId, from, to *queryNode) *relationNode {
	return &relationNode{world: world, typ: typ, from: from, to: to}
}

// estimate mirrors queryNode.estimate: the join can emit at most as many
// rows as its smaller endpoint.
func (n *relationNode) estimate() int {
	fe, te := n.from.estimate(), n.to.estimate()
	if fe < te {
		return fe
	}
	return te
}

// driveFromFrom reports whether the join should iterate from's entities and
// look up their related "to" partners (true), or the reverse (false) —
// whichever endpoint has the smaller estimate, per spec SS4.8's ordering
// heuristic.
func (n *relationNode) driveFromFrom() bool {
	return n.from.estimate() <= n.to.estimate()
}
