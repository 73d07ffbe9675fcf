package ecs

import (
	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// RelationEdge pairs a relation's partner entity with the payload value
// stored on that edge, returned by Outgoing/Incoming.
type RelationEdge[T any] struct {
	Entity Entity
	Value  T
}

// Relate records an edge from -> to for relation type T, storing value the
// same way SetComponent writes a dense table column. T must already be
// registered via RegisterRelation (Relate does not infer a relation kind on
// the caller's behalf — KindSymmetricRelation vs KindTreeRelation changes
// storage and cycle-checking behavior, so it cannot be guessed).
func Relate[T any](w *World, from, to Entity, value T) error {
	id, ok := ComponentOf[T](w.types)
	if !ok {
		return bark.AddTrace(UnknownTypeError{ID: InvalidDataTypeId})
	}
	info := w.types.Type(id)
	acc := accessorFor[T](info)
	return w.relate(id, from, to, func(tbl table.Table, row int) {
		*acc.Get(row, tbl) = value
	})
}

// RelateDeferred queues Relate[T] against from/to on buf, for use inside a
// system or observer body while the world is locked.
func RelateDeferred[T any](buf *CommandBuffer, from, to TempEntity, value T) {
	buf.RelateWithValue(from, to, func(w *World, from, to Entity) error {
		return Relate(w, from, to, value)
	})
}

// RelationValue reads the payload value stored on the edge from -> to for
// relation type T, returning ok=false if no such edge exists.
func RelationValue[T any](w *World, from, to Entity) (T, bool) {
	var zero T
	id, ok := ComponentOf[T](w.types)
	if !ok {
		return zero, false
	}
	tbl, row, ok := w.rel.valueRow(id, from, to)
	if !ok {
		return zero, false
	}
	info := w.types.Type(id)
	acc := accessorFor[T](info)
	if tbl == nil || !acc.Check(tbl) {
		return zero, false
	}
	return *acc.Get(row, tbl), true
}

// Outgoing returns every edge of relation type T where e is the "from"
// endpoint (both sides, for symmetric relations), each paired with its
// stored payload value.
func Outgoing[T any](w *World, e Entity) []RelationEdge[T] {
	id, ok := ComponentOf[T](w.types)
	if !ok {
		return nil
	}
	return decodeMatches[T](w, id, w.rel.outgoingRows(id, e))
}

// Incoming returns every edge of relation type T where e is the "to"
// endpoint (both sides, for symmetric relations), each paired with its
// stored payload value.
func Incoming[T any](w *World, e Entity) []RelationEdge[T] {
	id, ok := ComponentOf[T](w.types)
	if !ok {
		return nil
	}
	return decodeMatches[T](w, id, w.rel.incomingRows(id, e))
}

func decodeMatches[T any](w *World, id DataTypeId, matches []relationMatch) []RelationEdge[T] {
	if len(matches) == 0 {
		return nil
	}
	info := w.types.Type(id)
	acc := accessorFor[T](info)
	out := make([]RelationEdge[T], 0, len(matches))
	for _, m := range matches {
		edge := RelationEdge[T]{Entity: m.partner}
		if m.tbl != nil && acc.Check(m.tbl) {
			edge.Value = *acc.Get(m.row, m.tbl)
		}
		out = append(out, edge)
	}
	return out
}
