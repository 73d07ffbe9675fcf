package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dtHealth struct{ HP int }

func TestWorldCreateDestroyDenseTableRoundTrip(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())

	entities, err := w.Create(3)
	require.NoError(t, err)
	require.Len(t, entities, 3)

	dt, err := w.dense.At(EmptyArchetypeId)
	require.NoError(t, err)
	assert.Equal(t, 3, dt.Length())

	mid := entities[1]
	require.NoError(t, w.Destroy(mid))
	assert.Equal(t, 2, dt.Length())
	assert.False(t, w.pool.Contains(mid))

	for _, e := range []Entity{entities[0], entities[2]} {
		assert.True(t, w.pool.Contains(e))
	}
}

func TestWorldAddMigratesEntityToNewArchetype(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]

	require.NoError(t, AddComponent(w, e, dtHealth{HP: 10}))
	assert.True(t, w.Has(e, hpID))

	hp, ok := Get[dtHealth](w, e)
	require.True(t, ok)
	assert.Equal(t, 10, hp.HP)

	emptyDT, err := w.dense.At(EmptyArchetypeId)
	require.NoError(t, err)
	assert.Equal(t, 0, emptyDT.Length())
}

func TestWorldRemoveMigratesBackAndDropsValue(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]
	require.NoError(t, AddComponent(w, e, dtHealth{HP: 5}))

	require.NoError(t, w.Remove(e, hpID))
	assert.False(t, w.Has(e, hpID))
	_, ok := Get[dtHealth](w, e)
	assert.False(t, ok)
}

func TestWorldMigratePreservesOtherEntitiesInSourceTable(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(3)
	require.NoError(t, err)

	require.NoError(t, AddComponent(w, entities[1], dtHealth{HP: 42}))

	assert.False(t, w.Has(entities[0], hpID))
	assert.True(t, w.Has(entities[1], hpID))
	assert.False(t, w.Has(entities[2], hpID))

	hp, ok := Get[dtHealth](w, entities[1])
	require.True(t, ok)
	assert.Equal(t, 42, hp.HP)
}
