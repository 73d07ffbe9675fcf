package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qPosition struct{ X, Y float64 }
type qVelocity struct{ X, Y float64 }
type qFrozen struct{}

func collectEntities(q *Query, target Target) []Entity {
	var out []Entity
	cursor := q.Cursor()
	for cursor.Next() {
		out = append(out, cursor.Entity(target))
	}
	return out
}

func TestQueryWithMatchesOnlyEntitiesCarryingColumn(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(3)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], qPosition{X: 1}))
	require.NoError(t, AddComponent(w, entities[2], qPosition{X: 3}))

	q := NewQuery(w, With(0, posID))
	got := collectEntities(q, 0)

	assert.ElementsMatch(t, []Entity{entities[0], entities[2]}, got)
}

func TestQueryWithoutExcludesColumn(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)
	frozenID, err := RegisterComponent[qFrozen](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(2)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], qPosition{X: 1}))
	require.NoError(t, AddComponent(w, entities[1], qPosition{X: 2}))
	require.NoError(t, AddComponent(w, entities[1], qFrozen{}))

	q := NewQuery(w, With(0, posID), Without(0, frozenID))
	got := collectEntities(q, 0)

	assert.Equal(t, []Entity{entities[0]}, got)
}

func TestQueryOptionalDoesNotConstrainMatch(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)
	velID, err := RegisterComponent[qVelocity](w.Types())
	require.NoError(t, err)

	entities, err := w.Create(2)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], qPosition{X: 1}))
	require.NoError(t, AddComponent(w, entities[1], qPosition{X: 2}))
	require.NoError(t, AddComponent(w, entities[1], qVelocity{X: 9}))

	q := NewQuery(w, With(0, posID), Optional(velID, 0))
	got := collectEntities(q, 0)
	assert.ElementsMatch(t, []Entity{entities[0], entities[1]}, got)

	for _, e := range got {
		_, hasVel := Get[qVelocity](w, e)
		if e == entities[1] {
			assert.True(t, hasVel)
		} else {
			assert.False(t, hasVel)
		}
	}
}

func TestQueryIsLazyAboutArchetypesCreatedAfterCompile(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)

	q := NewQuery(w, With(0, posID))
	assert.Empty(t, collectEntities(q, 0))

	entities, err := w.Create(1)
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, entities[0], qPosition{X: 5}))

	got := collectEntities(q, 0)
	assert.Equal(t, []Entity{entities[0]}, got)
}

func TestQueryRelationFastJoinMatchesPairs(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)
	friendID, err := RegisterRelation[friendsWith](w.Types(), KindSymmetricRelation)
	require.NoError(t, err)

	entities, err := w.Create(3)
	require.NoError(t, err)
	for _, e := range entities {
		require.NoError(t, AddComponent(w, e, qPosition{}))
	}
	require.NoError(t, w.Relate(friendID, entities[0], entities[1]))

	q := NewQuery(w, With(0, posID), With(1, posID), Relation(friendID, 0, 1))
	cursor := q.Cursor()

	var pairs [][2]Entity
	for cursor.Next() {
		pairs = append(pairs, [2]Entity{cursor.Entity(0), cursor.Entity(1)})
	}

	// friendsWith is symmetric, so the one edge matches the two targets in
	// both orders; the driving target walks its dense table in row order.
	require.Len(t, pairs, 2)
	assert.Equal(t, [2]Entity{entities[0], entities[1]}, pairs[0])
	assert.Equal(t, [2]Entity{entities[1], entities[0]}, pairs[1])
}

func TestQueryRelationFastJoinFindsNoPartnerForUnrelatedEntity(t *testing.T) {
	w := NewWorld(DefaultRuntimeConfig(), NopLogger())
	posID, err := RegisterComponent[qPosition](w.Types())
	require.NoError(t, err)
	friendID, err := RegisterRelation[friendsWith](w.Types(), KindSymmetricRelation)
	require.NoError(t, err)

	entities, err := w.Create(2)
	require.NoError(t, err)
	for _, e := range entities {
		require.NoError(t, AddComponent(w, e, qPosition{}))
	}

	q := NewQuery(w, With(0, posID), With(1, posID), Relation(friendID, 0, 1))
	cursor := q.Cursor()

	assert.False(t, cursor.Next())
}
