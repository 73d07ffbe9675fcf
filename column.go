package ecs

import "fmt"

// ColumnId wraps a DataTypeId together with a slot index. The index is 0
// for component columns; relation columns use it to keep distinct slots
// per relation type distinguishable when they appear in the same key
// space as components (archetype membership keys, observer keys).
type ColumnId struct {
	Type  DataTypeId
	Index uint32
}

// NewComponentColumn builds the column id for a component type.
func NewComponentColumn(t DataTypeId) ColumnId {
	return ColumnId{Type: t, Index: 0}
}

// NewRelationColumn builds the column id for a relation type's slot.
func NewRelationColumn(t DataTypeId, index uint32) ColumnId {
	return ColumnId{Type: t, Index: index}
}

func (c ColumnId) String() string {
	if c.Index == 0 {
		return fmt.Sprintf("col(%d)", c.Type)
	}
	return fmt.Sprintf("col(%d#%d)", c.Type, c.Index)
}
