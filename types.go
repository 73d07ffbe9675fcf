package ecs

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/TheBitDrifter/table"
)

// DataTypeId is a dense index into the type registry, assigned in
// registration order. InvalidDataTypeId names "no type".
type DataTypeId uint32

// InvalidDataTypeId is the sentinel meaning "no type registered".
const InvalidDataTypeId DataTypeId = 0

// TypeKind classifies what a registered DataTypeId is used for.
type TypeKind int

const (
	// KindComponent is an ordinary per-entity component column.
	KindComponent TypeKind = iota
	// KindSymmetricRelation is a relation where relating (a,b) is
	// observationally identical to relating (b,a).
	KindSymmetricRelation
	// KindTreeRelation is a relation where each entity has at most one
	// outgoing edge, forming a forest.
	KindTreeRelation
)

func (k TypeKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindSymmetricRelation:
		return "symmetric-relation"
	case KindTreeRelation:
		return "tree-relation"
	default:
		return "unknown"
	}
}

// TypeInfo records the metadata the ECS needs for a registered type: its
// stable identity, its storage kind, and the table.ElementType that backs
// its dense-table construction, default/copy/move/destroy and size/align.
type TypeInfo struct {
	ID      DataTypeId
	Name    string
	Kind    TypeKind
	Element table.ElementType
	GoType  reflect.Type
}

// TypeRegistry assigns a stable DataTypeId to each registered component or
// relation type, and records whether a type is a component, a symmetric
// relation, or a tree relation. The registry is monotone: once a type is
// registered it is never removed or renumbered, so downstream components
//(archetype graph, dense tables, observer keys) can key off DataTypeId as a
// dense array index.
type TypeRegistry struct {
	mu     sync.RWMutex
	byID   []TypeInfo // index 0 is the InvalidDataTypeId placeholder
	byName map[string]DataTypeId
	byGo   map[reflect.Type]DataTypeId
}

// NewTypeRegistry constructs an empty registry.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		byName: make(map[string]DataTypeId),
		byGo:   make(map[reflect.Type]DataTypeId),
	}
	r.byID = append(r.byID, TypeInfo{ID: InvalidDataTypeId, Name: "<invalid>"})
	return r
}

// RegisterType inserts a new type with the given identity (a globally
// unique name), kind, and backing element type. Registering an identity
// again with the same Go type and kind returns the existing id; it fails
// only if the identity is already registered with a different Go type or
// kind.
func (r *TypeRegistry) RegisterType(name string, kind TypeKind, goType reflect.Type, element table.ElementType) (DataTypeId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[name]; ok {
		info := r.byID[existing]
		if info.GoType != goType || info.Kind != kind {
			return InvalidDataTypeId, fmt.Errorf("type identity %q already registered with a different layout (kind=%s, type=%v)", name, info.Kind, info.GoType)
		}
		return existing, nil
	}

	id := DataTypeId(len(r.byID))
	info := TypeInfo{ID: id, Name: name, Kind: kind, Element: element, GoType: goType}
	r.byID = append(r.byID, info)
	r.byName[name] = id
	r.byGo[goType] = id
	return id, nil
}

// ID resolves a registered Go type to its DataTypeId. ok is false if the
// type was never registered.
func (r *TypeRegistry) ID(goType reflect.Type) (DataTypeId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byGo[goType]
	return id, ok
}

// IDByName resolves a registered type's stable name to its DataTypeId.
func (r *TypeRegistry) IDByName(name string) (DataTypeId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Type returns the TypeInfo for a DataTypeId. It panics if the id is out of
// range, since that indicates internal corruption rather than user error;
// callers that accept untrusted ids should check Contains first.
func (r *TypeRegistry) Type(id DataTypeId) TypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.byID) {
		panic(fmt.Sprintf("ecs: DataTypeId %d out of range (corruption)", id))
	}
	return r.byID[id]
}

// Contains reports whether id names a registered type.
func (r *TypeRegistry) Contains(id DataTypeId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return id != InvalidDataTypeId && int(id) < len(r.byID)
}

// Kind returns the TypeKind of a registered id.
func (r *TypeRegistry) Kind(id DataTypeId) TypeKind {
	return r.Type(id).Kind
}

// Len returns the number of registered types, including the invalid
// placeholder.
func (r *TypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
