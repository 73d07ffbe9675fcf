package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// ComponentOf returns the DataTypeId registered for Go type T, failing if T
// was never registered as a component.
func ComponentOf[T any](registry *TypeRegistry) (DataTypeId, bool) {
	return registry.ID(reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterComponent registers Go type T as a component column, the
// generalization of the teacher's FactoryNewComponent[T]() to a dynamic
// DataTypeId instead of a static per-package Component value. Calling it
// twice for the same T returns the same id.
func RegisterComponent[T any](registry *TypeRegistry) (DataTypeId, error) {
	goType := reflect.TypeOf((*T)(nil)).Elem()
	element := table.FactoryNewElementType[T]()
	return registry.RegisterType(goType.String(), KindComponent, goType, element)
}

// RegisterRelation registers Go type T as a relation payload, tagged with
// the given kind (KindSymmetricRelation or KindTreeRelation). T may be an
// empty struct for marker-only relations.
func RegisterRelation[T any](registry *TypeRegistry, kind TypeKind) (DataTypeId, error) {
	goType := reflect.TypeOf((*T)(nil)).Elem()
	element := table.FactoryNewElementType[T]()
	return registry.RegisterType(goType.String(), kind, goType, element)
}

// accessorFor builds a table.Accessor[T] bound to the ElementType a
// component's TypeInfo was registered with, mirroring the teacher's
// table.FactoryNewAccessor[T](iden) call in FactoryNewComponent.
func accessorFor[T any](info TypeInfo) table.Accessor[T] {
	return table.FactoryNewAccessor[T](info.Element)
}

// Get reads a pointer to entity's T component, returning ok=false if the
// entity's archetype has no such column or the entity is stale. Mirrors the
// teacher's AccessibleComponent.GetFromEntity, which reads through
// entity.Index()/entity.Table() rather than re-deriving the row from the
// archetype graph.
func Get[T any](w *World, entity Entity) (*T, bool) {
	id, ok := ComponentOf[T](w.types)
	if !ok || !w.pool.Contains(entity) {
		return nil, false
	}
	row := w.pool.Row(entity.Index)
	tbl := row.Table()
	info := w.types.Type(id)
	acc := accessorFor[T](info)
	if !acc.Check(tbl) {
		return nil, false
	}
	return acc.Get(row.Index(), tbl), true
}

// MustGet is Get but panics with a diagnostic instead of returning ok=false,
// for callers (e.g. query iteration) that already proved the column exists.
func MustGet[T any](w *World, entity Entity) *T {
	v, ok := Get[T](w, entity)
	if !ok {
		panic(UnknownTypeError{ID: InvalidDataTypeId})
	}
	return v
}

// Has reports whether entity's current archetype carries component T.
func Has[T any](w *World, entity Entity) bool {
	_, ok := Get[T](w, entity)
	return ok
}

// SetComponent overwrites entity's T component in place. The entity must
// already carry the column (via AddComponent or a prior SetComponent);
// unlike AddComponent this never migrates the entity between archetypes.
func SetComponent[T any](w *World, entity Entity, value T) bool {
	v, ok := Get[T](w, entity)
	if !ok {
		return false
	}
	*v = value
	return true
}

// AddComponent migrates entity into the archetype that additionally
// carries T (registering T on first use) and writes value into the new
// column, combining World.Add with the value write the teacher's
// AddComponentWithValue performs in one step.
func AddComponent[T any](w *World, entity Entity, value T) error {
	id, ok := ComponentOf[T](w.types)
	if !ok {
		var err error
		id, err = RegisterComponent[T](w.types)
		if err != nil {
			return err
		}
	}
	if err := w.Add(entity, id); err != nil {
		return err
	}
	SetComponent(w, entity, value)
	return nil
}

// AddComponentDeferred queues AddComponent[T] against target on buf, for use
// inside a system or observer body while the world is locked.
func AddComponentDeferred[T any](buf *CommandBuffer, target TempEntity, value T) {
	buf.AddComponentDeferred(target, func(w *World, e Entity) error {
		return AddComponent(w, e, value)
	})
}
