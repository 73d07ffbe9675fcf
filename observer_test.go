package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obsTag struct{}

func TestObserverOnAddFiresInRegistrationOrder(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	tagID, err := RegisterComponent[obsTag](w.Types())
	require.NoError(t, err)

	var order []string
	w.obs.HookOnAdd(tagID, func(w *World, e Entity) { order = append(order, "first") })
	w.obs.HookOnAdd(tagID, func(w *World, e Entity) { order = append(order, "second") })

	entities, err := w.Create(1)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], obsTag{}))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestObserverOnRemoveSeesValueBeforeRemoval(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	hpID, err := RegisterComponent[dtHealth](w.Types())
	require.NoError(t, err)

	var seenHP int
	var sawIt bool
	w.obs.HookOnRemove(hpID, func(w *World, e Entity) {
		hp, ok := Get[dtHealth](w, e)
		if ok {
			seenHP = hp.HP
			sawIt = true
		}
	})

	entities, err := w.Create(1)
	require.NoError(t, err)
	e := entities[0]
	require.NoError(t, AddComponent(w, e, dtHealth{HP: 99}))
	require.NoError(t, w.Remove(e, hpID))

	assert.True(t, sawIt, "OnRemove must run while the component is still readable")
	assert.Equal(t, 99, seenHP)
}

func TestObserverUnhookStopsFutureNotifications(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	tagID, err := RegisterComponent[obsTag](w.Types())
	require.NoError(t, err)

	calls := 0
	id := w.obs.HookOnAdd(tagID, func(w *World, e Entity) { calls++ })
	w.obs.Unhook(id)

	entities, err := w.Create(1)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], obsTag{}))

	assert.Equal(t, 0, calls)
}

func TestObserverRecursionLimitPanics(t *testing.T) {
	w := NewWorld(RuntimeConfig{ObserverRecursionLimit: 2, DefaultTableCapacity: 8, SchedulerAmbiguity: AmbiguityWarn}, NopLogger())
	tagID, err := RegisterComponent[obsTag](w.Types())
	require.NoError(t, err)

	w.obs.HookOnAdd(tagID, func(w *World, e Entity) {
		entities, createErr := w.Create(1)
		if createErr != nil {
			return
		}
		_ = AddComponent(w, entities[0], obsTag{})
	})

	assert.Panics(t, func() {
		entities, createErr := w.Create(1)
		require.NoError(t, createErr)
		_ = AddComponent(w, entities[0], obsTag{})
	})
}

func TestObserverOnRelatedFires(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	friendID, err := RegisterRelation[friendsWith](w.Types(), KindSymmetricRelation)
	require.NoError(t, err)

	var gotFrom, gotTo Entity
	w.obs.HookOnRelated(friendID, func(w *World, from, to Entity) {
		gotFrom, gotTo = from, to
	})

	entities, err := w.Create(2)
	require.NoError(t, err)
	require.NoError(t, w.Relate(friendID, entities[0], entities[1]))

	assert.Equal(t, entities[0], gotFrom)
	assert.Equal(t, entities[1], gotTo)
}
