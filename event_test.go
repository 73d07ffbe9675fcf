package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type damageEvent struct {
	Target Entity
	Amount int
}

func TestEventPushAndReadDrainsAndAdvancesCursor(t *testing.T) {
	r := NewEventRegistry()
	reader := NewEventReader[damageEvent](r)

	PushEvent(r, damageEvent{Amount: 5})
	PushEvent(r, damageEvent{Amount: 7})

	got := ReadEvents[damageEvent](r, reader)
	assert.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Amount)

	assert.Empty(t, ReadEvents[damageEvent](r, reader), "a second read before any new push returns nothing")
}

func TestEventMultipleReadersIndependentCursors(t *testing.T) {
	r := NewEventRegistry()
	fast := NewEventReader[damageEvent](r)
	PushEvent(r, damageEvent{Amount: 1})
	_ = ReadEvents[damageEvent](r, fast)

	slow := NewEventReader[damageEvent](r)
	PushEvent(r, damageEvent{Amount: 2})

	assert.Len(t, ReadEvents[damageEvent](r, fast), 1)
	assert.Len(t, ReadEvents[damageEvent](r, slow), 1, "a reader registered after the first push only sees events from its registration point")
}

func TestEventMaskFiltersReads(t *testing.T) {
	r := NewEventRegistry()
	reader := NewEventReader[damageEvent](r)

	const maskFire = 1 << 0
	const maskIce = 1 << 1
	PushEventMasked(r, damageEvent{Amount: 10}, maskFire)
	PushEventMasked(r, damageEvent{Amount: 20}, maskIce)

	fireOnly := ReadEventsMasked[damageEvent](r, reader, maskFire)
	assert.Len(t, fireOnly, 1)
	assert.Equal(t, 10, fireOnly[0].Amount)
}

func TestEventRegistryClearResetsBacklogAndCursors(t *testing.T) {
	r := NewEventRegistry()
	reader := NewEventReader[damageEvent](r)
	PushEvent(r, damageEvent{Amount: 3})

	r.Clear()

	assert.Empty(t, ReadEvents[damageEvent](r, reader))
	PushEvent(r, damageEvent{Amount: 4})
	assert.Len(t, ReadEvents[damageEvent](r, reader), 1)
}
