package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemBuilderAccumulatesOrderingAndAccess(t *testing.T) {
	before := NewTag("before-tag")
	after := NewTag("after-tag")
	group := NewTag("group")
	posID := DataTypeId(1)
	velID := DataTypeId(2)

	cond := func(w *World) bool { return true }
	sb := NewSystem("movement", func(w *World, cmd *CommandBuffer) {}).
		Before(before).
		After(after).
		Tagged(group).
		Reads(posID).
		Writes(velID).
		RunIf(cond)

	assert.Equal(t, "movement", sb.entry.name)
	assert.True(t, sb.entry.beforeLbl["before-tag"])
	assert.True(t, sb.entry.afterLbl["after-tag"])
	assert.True(t, sb.entry.tags["group"])
	assert.False(t, sb.entry.wholeWorld)
	assert.Len(t, sb.entry.conditions, 1)

	require := assert.New(t)
	require.Contains(sb.entry.access, Access{Type: posID, Mode: AccessRead})
	require.Contains(sb.entry.access, Access{Type: velID, Mode: AccessWrite})
}

func TestSystemBuilderWholeWorldOptsOutOfFineGrainedAccess(t *testing.T) {
	sb := NewSystem("dynamic-query", func(w *World, cmd *CommandBuffer) {}).WholeWorld()
	assert.True(t, sb.entry.wholeWorld)
}

func TestSystemBuilderReturnsSelfForChaining(t *testing.T) {
	sb := NewSystem("chained", func(w *World, cmd *CommandBuffer) {})
	result := sb.Before(NewTag("a")).After(NewTag("b")).Writes(DataTypeId(3))
	assert.Same(t, sb, result)
}
