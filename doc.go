/*
Package ecs provides the archetype-based Entity-Component-System runtime for
a voxel game engine.

The package stores entities, their components, and their pairwise relations
in dense, cache-friendly tables; compiles declarative queries into plans
that iterate matching tuples; fires observers in reaction to structural
changes; and schedules user systems under static read/write conflict
analysis.

Core Concepts:

  - Entity: an (index, generation) pair naming a live slot in the world.
  - Component: a registered data type attached to an entity.
  - Relation: a typed, directed edge between two entities (plain, symmetric
    or tree-shaped).
  - Archetype: the set of component columns shared by a group of entities,
    backing one dense table.
  - Query: a declarative filter compiled into a plan that iterates matching
    entities.
  - System: user code scheduled every frame under a statically known access
    set.

Basic Usage:

	builder := ecs.NewWorldBuilder(ecs.DefaultRuntimeConfig(), nil)
	world := builder.World()

	position, _ := ecs.RegisterComponent[Position](world.Types())
	velocity, _ := ecs.RegisterComponent[Velocity](world.Types())

	entities, _ := world.Create(1)
	e := entities[0]
	ecs.AddComponent(world, e, Position{X: 1, Y: 2})
	ecs.AddComponent(world, e, Velocity{X: 1, Y: 0})

	q := ecs.NewQuery(world, ecs.With(0, position), ecs.With(0, velocity))
	cursor := q.Cursor()
	for cursor.Next() {
		pos := ecs.MustGet[Position](world, cursor.Entity(0))
		vel := ecs.MustGet[Velocity](world, cursor.Entity(0))
		pos.X += vel.X
		pos.Y += vel.Y
	}

The rendering pipeline, asset loading, input, audio, windowing, physics and
scene/serialization formats are external collaborators and are not part of
this package; see SPEC_FULL.md section 6 for the boundary.
*/
package ecs
