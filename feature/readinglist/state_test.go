package readinglist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncStateFlags(t *testing.T) {
	s := NeedsNothing.With(NeedsSync).With(NeedsLocalListClear)

	assert.True(t, s.Has(NeedsSync))
	assert.True(t, s.Has(NeedsLocalListClear))
	assert.False(t, s.Has(NeedsRemoteEnable))

	s = s.Without(NeedsLocalListClear)
	assert.False(t, s.Has(NeedsLocalListClear))
	assert.True(t, s.Has(NeedsSync))
}

func TestSyncStateUnions(t *testing.T) {
	assert.True(t, NeedsEnable.Has(NeedsRemoteEnable))
	assert.True(t, NeedsEnable.Has(NeedsSync))

	assert.True(t, NeedsClearAndEnable.Has(NeedsLocalArticleClear))
	assert.True(t, NeedsClearAndEnable.Has(NeedsLocalListClear))
	assert.True(t, NeedsClearAndEnable.Has(NeedsEnable))

	assert.True(t, NeedsDisable.Has(NeedsRemoteDisable))
	assert.True(t, NeedsDisable.Has(NeedsLocalReset))
}

func TestIsSyncEnabled(t *testing.T) {
	assert.False(t, NeedsNothing.IsSyncEnabled())
	assert.True(t, NeedsNothing.With(NeedsSync).IsSyncEnabled())
	assert.True(t, NeedsNothing.With(NeedsUpdate).IsSyncEnabled())
	assert.False(t, NeedsNothing.With(NeedsRemoteDisable).IsSyncEnabled())
}

func TestTransitionEnable(t *testing.T) {
	next := Transition(NeedsNothing, true, false, false)
	assert.True(t, next.Has(NeedsEnable))
	assert.False(t, next.Has(NeedsLocalClear))
	assert.True(t, next.IsSyncEnabled())
}

func TestTransitionEnableWithLocalWipe(t *testing.T) {
	next := Transition(NeedsNothing, true, true, false)
	assert.True(t, next.Has(NeedsClearAndEnable))
}

func TestTransitionEnableClearsPendingDisable(t *testing.T) {
	// Turning sync back on before a disable cycle ran must cancel it.
	pending := NeedsNothing.With(NeedsDisable)
	next := Transition(pending, true, false, false)
	assert.False(t, next.Has(NeedsRemoteDisable))
	assert.False(t, next.Has(NeedsLocalReset))
	assert.True(t, next.Has(NeedsEnable))
}

func TestTransitionDisableKeepsLocalLists(t *testing.T) {
	steady := NeedsNothing.With(NeedsUpdate)
	next := Transition(steady, false, false, false)

	assert.False(t, next.IsSyncEnabled())
	assert.True(t, next.Has(NeedsLocalReset))
	assert.False(t, next.Has(NeedsLocalListClear))
	assert.False(t, next.Has(NeedsRemoteDisable))
}

func TestTransitionDisableWithRemoteTeardown(t *testing.T) {
	next := Transition(NeedsNothing.With(NeedsUpdate), false, false, true)
	assert.True(t, next.Has(NeedsRemoteDisable))
	assert.True(t, next.Has(NeedsLocalReset))
}

func TestTransitionDisableWithLocalWipe(t *testing.T) {
	next := Transition(NeedsNothing.With(NeedsUpdate), false, true, false)
	assert.True(t, next.Has(NeedsLocalClear))
}

func TestSyncStateString(t *testing.T) {
	assert.Equal(t, "idle", NeedsNothing.String())
	assert.Equal(t, "full-sync+update", NeedsNothing.With(NeedsSync|NeedsUpdate).String())
}
