package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cbTag struct{}

type singleComponentBlueprint struct {
	hp dtHealth
}

func (b singleComponentBlueprint) Apply(buf *CommandBuffer, e TempEntity) {
	AddComponentDeferred(buf, e, b.hp)
}

func TestCommandBufferSpawnAppliesBlueprint(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	cmd := NewCommandBuffer()
	temp := cmd.Spawn(singleComponentBlueprint{hp: dtHealth{HP: 30}})
	cmd.Apply(w)

	_ = temp
	dt, err := w.dense.At(w.graph.With(EmptyArchetypeId, hpID, w.Types().Type(hpID).Element))
	require.NoError(t, err)
	assert.Equal(t, 1, dt.Length())
}

func TestCommandBufferDestroyQueuesRemoval(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]

	cmd := NewCommandBuffer()
	cmd.Destroy(TempEntityOf(e))
	cmd.Apply(w)

	assert.False(t, w.pool.Contains(e))
}

func TestCommandBufferSpawnedEntityRelatedByItsBlueprint(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	friendID, err := RegisterRelation[friendsWith](w.Types(), KindSymmetricRelation)
	require.NoError(t, err)

	entities, err := w.Create(1)
	require.NoError(t, err)
	a := entities[0]

	cmd := NewCommandBuffer()
	spawnedChild := cmd.Spawn(BlueprintFunc(func(buf *CommandBuffer, e TempEntity) {
		buf.Relate(friendID, TempEntityOf(a), e)
	}))
	cmd.Apply(w)

	_ = spawnedChild
	related := w.rel.RelatedTo(friendID, a)
	assert.Len(t, related, 1)
}

func TestCommandBufferRemoveComponent(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]
	require.NoError(t, AddComponent(w, e, dtHealth{HP: 1}))

	cmd := NewCommandBuffer()
	cmd.RemoveComponent(TempEntityOf(e), hpID)
	cmd.Apply(w)

	assert.False(t, w.Has(e, hpID))
}

func TestCommandBufferDeferRunsLast(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]

	var sawAlive bool
	cmd := NewCommandBuffer()
	cmd.Destroy(TempEntityOf(e))
	cmd.Defer(func(w *World) {
		sawAlive = w.pool.Contains(e)
	})
	cmd.Apply(w)

	assert.False(t, sawAlive, "deferred callbacks run after destroys have already applied")
}

func TestCommandBufferLogsRatherThanPanicsOnStaleTarget(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())

	cmd := NewCommandBuffer()
	cmd.Destroy(TempEntityOf(NilEntity))
	assert.NotPanics(t, func() { cmd.Apply(w) }, "a failed individual operation is logged and skipped, not fatal to the batch")
}
