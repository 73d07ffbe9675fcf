package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wbPosition struct{ X, Y float64 }

func TestWorldBuilderAddObserverOnAddAndOnRemove(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[wbPosition](b.World().Types())
	require.NoError(t, err)

	var added, removed bool
	b.AddObserver(posID, OnAdd, func(w *World, e Entity) { added = true })
	b.AddObserver(posID, OnRemove, func(w *World, e Entity) { removed = true })

	world, _, err := b.Build()
	require.NoError(t, err)

	entities, err := world.Create(1)
	require.NoError(t, err)
	e := entities[0]

	require.NoError(t, AddComponent(world, e, wbPosition{X: 1}))
	assert.True(t, added)

	require.NoError(t, world.Remove(e, posID))
	assert.True(t, removed)
}

func TestWorldBuilderAddRelationObserverOnRelatedAndOnUnrelated(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())
	friendID, err := RegisterRelation[friendsWith](b.World().Types(), KindSymmetricRelation)
	require.NoError(t, err)

	var related, unrelated bool
	b.AddRelationObserver(friendID, OnRelated, func(w *World, from, to Entity) { related = true })
	b.AddRelationObserver(friendID, OnUnrelated, func(w *World, from, to Entity) { unrelated = true })

	world, _, err := b.Build()
	require.NoError(t, err)

	entities, err := world.Create(2)
	require.NoError(t, err)
	a, c := entities[0], entities[1]

	require.NoError(t, world.Relate(friendID, a, c))
	assert.True(t, related)

	require.NoError(t, world.Unrelate(friendID, a, c))
	assert.True(t, unrelated)
}

func TestWorldBuilderAddPluginRunsPlugin(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())

	var ran bool
	err := b.AddPlugin("marks-ran", func(inner *WorldBuilder) {
		ran = true
		assert.Same(t, b, inner)
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWorldBuilderAddPluginRecoversPanic(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())

	err := b.AddPlugin("bad-plugin", func(inner *WorldBuilder) {
		panic("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-plugin")
	assert.Contains(t, err.Error(), "boom")
}

func TestWorldBuilderBuildIsIdempotent(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())
	calls := 0
	b.AddSystem(NewSystem("noop", func(w *World, cmd *CommandBuffer) { calls++ }))

	world1, sched1, err := b.Build()
	require.NoError(t, err)

	world2, sched2, err := b.Build()
	require.NoError(t, err)

	assert.Same(t, world1, world2)
	assert.Same(t, sched1, sched2)
}

func TestWorldBuilderRunFrameRunsSystemsAndClearsEvents(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())
	reader := NewEventReader[damageEvent](b.Events())

	var withinFrame int
	b.AddSystem(NewSystem("emit", func(w *World, cmd *CommandBuffer) {
		PushEvent(b.Events(), damageEvent{Amount: 9})
	}).Tagged(NewTag("emit")))
	b.AddSystem(NewSystem("read", func(w *World, cmd *CommandBuffer) {
		withinFrame = len(ReadEvents[damageEvent](b.Events(), reader))
	}).After(NewTag("emit")))

	_, _, err := b.Build()
	require.NoError(t, err)

	b.RunFrame()
	assert.Equal(t, 1, withinFrame, "a system later in the same frame must see an earlier system's pushed event")

	afterFrame := ReadEvents[damageEvent](b.Events(), reader)
	assert.Empty(t, afterFrame, "RunFrame clears the event registry once the frame's systems have all run")
}
