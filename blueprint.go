package ecs

// Blueprint is a reusable template for spawning an entity (and, recursively,
// its children) in a single command-buffer operation. The concrete shape of
// a blueprint (which components it sets, how child blueprints relate to the
// parent) is left to callers: this package only needs to know how to apply
// one to a freshly created entity inside a CommandBuffer (spec SS4.7, SS6).
type Blueprint interface {
	// Apply configures entity inside buf: typically a sequence of
	// buf.AddComponent/buf.Relate calls, possibly spawning and relating
	// child entities built from nested blueprints.
	Apply(buf *CommandBuffer, entity TempEntity)
}

// BlueprintFunc adapts a plain function to the Blueprint interface, the way
// most callers will want to define one inline.
type BlueprintFunc func(buf *CommandBuffer, entity TempEntity)

// Apply calls f.
func (f BlueprintFunc) Apply(buf *CommandBuffer, entity TempEntity) { f(buf, entity) }
