package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPluginRunsPluginAgainstBuilder(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())

	var seen *WorldBuilder
	err := applyPlugin(b, "seen-plugin", func(inner *WorldBuilder) {
		seen = inner
	})

	require.NoError(t, err)
	assert.Same(t, b, seen)
}

func TestApplyPluginTurnsPanicIntoError(t *testing.T) {
	b := NewWorldBuilder(DefaultRuntimeConfig(), NopLogger())

	err := applyPlugin(b, "exploder", func(inner *WorldBuilder) {
		panic("everything is on fire")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploder")
	assert.Contains(t, err.Error(), "everything is on fire")
}

func TestTagStringIsItsName(t *testing.T) {
	tag := NewTag("physics")
	assert.Equal(t, "physics", tag.String())
}
