package ecs

// subCursor walks one target's matched archetypes outer-to-inner and rows
// within the current archetype's dense table inner-to-outer, the same
// traversal order as the teacher's Cursor (archetype outer loop, row inner
// loop) generalized to one lane of a possibly multi-target join.
type subCursor struct {
	node   *queryNode
	archIdx int
	row     int
	length  int
}

func newSubCursor(node *queryNode) *subCursor {
	sc := &subCursor{node: node}
	sc.seekArchetype()
	return sc
}

// seekArchetype advances archIdx until it points at an archetype with at
// least one row, or past the end if none remain.
func (sc *subCursor) seekArchetype() {
	for sc.archIdx < len(sc.node.matches) {
		dt, err := sc.node.world.dense.At(sc.node.matches[sc.archIdx])
		if err == nil && dt.Length() > 0 {
			sc.length = dt.Length()
			sc.row = 0
			return
		}
		sc.archIdx++
	}
	sc.length = 0
}

func (sc *subCursor) valid() bool { return sc.archIdx < len(sc.node.matches) }

// advance moves to the next row, rolling over to the next non-empty
// archetype when the current one is exhausted. Returns false once every
// matched archetype has been consumed.
func (sc *subCursor) advance() bool {
	sc.row++
	if sc.row < sc.length {
		return true
	}
	sc.archIdx++
	sc.seekArchetype()
	return sc.valid()
}

func (sc *subCursor) reset() {
	sc.archIdx = 0
	sc.seekArchetype()
}

func (sc *subCursor) entity() Entity {
	dt, _ := sc.node.world.dense.At(sc.node.matches[sc.archIdx])
	return dt.EntityAt(sc.row)
}

// Cursor iterates the tuples of bound Targets matching a compiled Query.
// Component/relation values are read through Get[T]/MustGet[T] against the
// Entity bound to each target (spec SS4.8's "producing references into
// dense-table columns": the reference is the entity plus its live dense
// table row, already resolved by the accessor machinery in
// component_access.go).
//
// Two execution strategies:
//   - fast join: exactly one Relation clause spanning exactly the query's two
//     targets drives iteration from whichever endpoint has the smaller
//     estimate() and looks up partners directly in the sparse relation
//     index, per spec SS4.8's ordering heuristic.
//   - general: any other shape (any number of With/Without-only targets, or
//     relations that don't cleanly cover exactly two targets) falls back to
//     a cross-product odometer over every target's matched rows, with each
//     Relation clause checked as a post-filter via SparseRelationRegistry.Related.
type Cursor struct {
	q       *Query
	order   []Target
	subs    map[Target]*subCursor
	started bool

	fastJoin    *relationPlan
	driveTarget Target
	otherTarget Target
	partners    []Entity
	partnerIdx  int
	otherEntity Entity
}

// NewCursor starts iteration over q. Call Next repeatedly; after each true
// result, Entity(target) resolves the current tuple's bound entities.
func NewCursor(q *Query) *Cursor {
	for _, t := range q.order {
		q.targets[t].node.update()
	}

	c := &Cursor{q: q, order: q.order, subs: make(map[Target]*subCursor)}

	if len(q.order) == 2 && len(q.relations) == 1 {
		rel := &q.relations[0]
		if (rel.from == q.order[0] && rel.to == q.order[1]) ||
			(rel.from == q.order[1] && rel.to == q.order[0]) {
			c.fastJoin = rel
		}
	}

	if c.fastJoin != nil {
		if c.fastJoin.node.driveFromFrom() {
			c.driveTarget, c.otherTarget = c.fastJoin.from, c.fastJoin.to
		} else {
			c.driveTarget, c.otherTarget = c.fastJoin.to, c.fastJoin.from
		}
		c.subs[c.driveTarget] = newSubCursor(q.targets[c.driveTarget].node)
	} else {
		for _, t := range q.order {
			c.subs[t] = newSubCursor(q.targets[t].node)
		}
	}
	return c
}

// Next advances the cursor, returning false once every matching tuple has
// been produced.
func (c *Cursor) Next() bool {
	if c.fastJoin != nil {
		return c.nextFastJoin()
	}
	return c.nextGeneral()
}

func (c *Cursor) nextFastJoin() bool {
	drive := c.subs[c.driveTarget]

	for {
		if c.partnerIdx < len(c.partners) {
			c.otherEntity = c.partners[c.partnerIdx]
			c.partnerIdx++
			return true
		}
		if !c.advanceDrive(drive) {
			return false
		}
		c.loadPartners(drive.entity())
	}
}

// advanceDrive positions drive at its next row, initializing it on the
// first call instead of skipping row 0.
func (c *Cursor) advanceDrive(drive *subCursor) bool {
	if !c.started {
		c.started = true
		return drive.valid()
	}
	return drive.advance()
}

func (c *Cursor) loadPartners(driveEntity Entity) {
	c.partners = c.partners[:0]
	c.partnerIdx = 0

	otherNode := c.q.targets[c.otherTarget].node
	var candidates []Entity
	if c.driveTarget == c.fastJoin.from {
		candidates = c.q.world.rel.RelatedTo(c.fastJoin.typ, driveEntity)
	} else {
		candidates = c.q.world.rel.RelatedFrom(c.fastJoin.typ, driveEntity)
	}
	for _, cand := range candidates {
		if !c.q.world.pool.Contains(cand) {
			continue
		}
		arch := c.q.world.pool.Archetype(cand.Index)
		if otherNode.contains(arch) {
			c.partners = append(c.partners, cand)
		}
	}
}

func (c *Cursor) nextGeneral() bool {
	if !c.started {
		c.started = true
		if c.allValid() && c.passesRelations() {
			return true
		}
		if !c.allValid() {
			return false
		}
	}
	for c.step() {
		if c.passesRelations() {
			return true
		}
	}
	return false
}

func (c *Cursor) allValid() bool {
	for _, t := range c.order {
		if !c.subs[t].valid() {
			return false
		}
	}
	return true
}

// step advances the odometer: increment the innermost (last-declared)
// target; on overflow reset it and carry into the next target to its left.
func (c *Cursor) step() bool {
	for i := len(c.order) - 1; i >= 0; i-- {
		sub := c.subs[c.order[i]]
		if sub.advance() {
			return true
		}
		sub.reset()
	}
	return false
}

func (c *Cursor) passesRelations() bool {
	for _, rel := range c.q.relations {
		from := c.subs[rel.from].entity()
		to := c.subs[rel.to].entity()
		if !c.q.world.rel.Related(rel.typ, from, to) {
			return false
		}
	}
	return true
}

// Entity resolves the entity currently bound to target. Only valid after a
// call to Next that returned true.
func (c *Cursor) Entity(target Target) Entity {
	if c.fastJoin != nil {
		if target == c.driveTarget {
			return c.subs[c.driveTarget].entity()
		}
		return c.otherEntity
	}
	return c.subs[target].entity()
}
