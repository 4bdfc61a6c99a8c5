package scrollsync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

func TestTracker_ZeroValue(t *testing.T) {
	t.Parallel()

	var tracker scrollsync.Tracker
	assert.Equal(t, scrollsync.ModePercentage, tracker.Mode())
	assert.Equal(t, scrollsync.RestoreTarget{Mode: scrollsync.ModePercentage}, tracker.CurrentRestoreTarget())
}

func TestTracker_LineRoundTrip(t *testing.T) {
	t.Parallel()

	var tracker scrollsync.Tracker
	tracker.EnterLineMode(17)

	line, ok := tracker.Line()
	assert.True(t, ok)
	assert.Equal(t, 17, line)
	assert.Equal(t, scrollsync.RestoreTarget{Mode: scrollsync.ModeLine, Line: 17}, tracker.CurrentRestoreTarget())
}

func TestTracker_PercentageRoundTrip(t *testing.T) {
	t.Parallel()

	var tracker scrollsync.Tracker
	got := tracker.EnterPercentageMode(250, 1000)

	assert.InDelta(t, 25.0, got, 1e-9)
	target := tracker.CurrentRestoreTarget()
	assert.Equal(t, scrollsync.ModePercentage, target.Mode)
	assert.InDelta(t, got, target.Percentage, 1e-9)
}

func TestTracker_ZeroHeightGuard(t *testing.T) {
	t.Parallel()

	var tracker scrollsync.Tracker
	assert.InDelta(t, 5000.0, tracker.EnterPercentageMode(50, 0), 1e-9)
	assert.InDelta(t, 5000.0, tracker.EnterPercentageMode(50, 0.25), 1e-9)
}

func TestTracker_ModesAreExclusive(t *testing.T) {
	t.Parallel()

	var tracker scrollsync.Tracker
	tracker.EnterLineMode(9)
	tracker.EnterPercentageMode(10, 100)

	_, lineMode := tracker.Line()
	assert.False(t, lineMode)
	pct, pctMode := tracker.Percentage()
	assert.True(t, pctMode)
	assert.InDelta(t, 10.0, pct, 1e-9)

	tracker.EnterLineMode(3)
	_, pctMode = tracker.Percentage()
	assert.False(t, pctMode)
	assert.Equal(t, scrollsync.RestoreTarget{Mode: scrollsync.ModeLine, Line: 3}, tracker.CurrentRestoreTarget())
}

func TestRestoreTarget_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line 4", scrollsync.RestoreTarget{Mode: scrollsync.ModeLine, Line: 4}.String())
	assert.Equal(t, "12.50%", scrollsync.RestoreTarget{Percentage: 12.5}.String())
}
