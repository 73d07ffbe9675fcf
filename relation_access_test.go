package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allyOf struct{ Power int }

func TestRelateFailsForUnregisteredType(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	entities, err := w.Create(2)
	require.NoError(t, err)

	err = Relate(w, entities[0], entities[1], allyOf{Power: 1})
	assert.Error(t, err, "Relate[T] must not auto-register a relation kind on the caller's behalf")
}

func TestRelateDeferredAppliesOnCommandBufferApply(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	_, err := RegisterRelation[allyOf](w.Types(), KindSymmetricRelation)
	require.NoError(t, err)

	entities, err := w.Create(2)
	require.NoError(t, err)
	a, b := entities[0], entities[1]

	cmd := NewCommandBuffer()
	RelateDeferred(cmd, TempEntityOf(a), TempEntityOf(b), allyOf{Power: 9})

	_, ok := RelationValue[allyOf](w, a, b)
	assert.False(t, ok, "queued relate must not apply until Apply runs")

	cmd.Apply(w)

	value, ok := RelationValue[allyOf](w, a, b)
	require.True(t, ok)
	assert.Equal(t, allyOf{Power: 9}, value)
}
