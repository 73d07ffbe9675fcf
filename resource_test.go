package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type frameCounter struct{ N int }

func TestResourceSetAndRead(t *testing.T) {
	r := NewResourceStore()
	SetResource(r, frameCounter{N: 1})

	got, ok := ReadResource[frameCounter](r)
	assert.True(t, ok)
	assert.Equal(t, 1, got.N)
}

func TestResourceReadMissingIsNotOK(t *testing.T) {
	r := NewResourceStore()
	_, ok := ReadResource[frameCounter](r)
	assert.False(t, ok)
}

func TestResourceWriteMutatesInPlace(t *testing.T) {
	r := NewResourceStore()
	SetResource(r, frameCounter{N: 0})

	ptr := WriteResource[frameCounter](r)
	ptr.N = 42

	got, _ := ReadResource[frameCounter](r)
	assert.Equal(t, 42, got.N)
}

func TestResourceWriteUnsetPanics(t *testing.T) {
	r := NewResourceStore()
	assert.Panics(t, func() { WriteResource[frameCounter](r) })
}

func TestResourceSetOverwritesExistingPointerTarget(t *testing.T) {
	r := NewResourceStore()
	SetResource(r, frameCounter{N: 1})
	ptr := WriteResource[frameCounter](r)

	SetResource(r, frameCounter{N: 2})
	assert.Equal(t, 2, ptr.N, "SetResource overwrites the same backing pointer rather than replacing it")
}

func TestDeltaTimeResource(t *testing.T) {
	r := NewResourceStore()
	SetResource(r, DeltaTime(0.016))

	dt, ok := ReadResource[DeltaTime](r)
	assert.True(t, ok)
	assert.InDelta(t, 0.016, float64(dt), 1e-9)
}
