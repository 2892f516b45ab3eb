package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/types"
)

var statusNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func endIn(d time.Duration) string {
	return format.FormatDBDate(statusNow.Add(d))
}

func TestEvaluateStatus_NoEndDate(t *testing.T) {
	info := EvaluateStatus(false, "", statusNow)
	assert.Equal(t, types.StatusNone, info.Status)

	info = EvaluateStatus(true, "", statusNow)
	assert.Equal(t, types.StatusNone, info.Status)
}

func TestEvaluateStatus_InactiveFlag(t *testing.T) {
	info := EvaluateStatus(false, endIn(30*24*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpired, info.Status)
	assert.False(t, info.Active)
	assert.Equal(t, 0, info.DaysLeft)
}

func TestEvaluateStatus_UnparsableEndDate(t *testing.T) {
	info := EvaluateStatus(true, "01/06/2026", statusNow)
	assert.Equal(t, types.StatusError, info.Status)
	assert.Equal(t, "01/06/2026", info.EndRaw)
}

func TestEvaluateStatus_Active(t *testing.T) {
	info := EvaluateStatus(true, endIn(10*24*time.Hour), statusNow)
	assert.Equal(t, types.StatusActive, info.Status)
	assert.True(t, info.Active)
	assert.Equal(t, 10, info.DaysLeft)
	assert.Equal(t, "20.06.2026", info.EndDate)
}

func TestEvaluateStatus_ExpiringSoonBoundaries(t *testing.T) {
	// Just over 3 whole days is still active.
	info := EvaluateStatus(true, endIn(4*24*time.Hour), statusNow)
	assert.Equal(t, types.StatusActive, info.Status)

	info = EvaluateStatus(true, endIn(3*24*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpiringSoon, info.Status)
	assert.Equal(t, 3, info.DaysLeft)

	info = EvaluateStatus(true, endIn(24*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpiringSoon, info.Status)
	assert.Equal(t, 1, info.DaysLeft)
}

func TestEvaluateStatus_LastDayCountsAsExpired(t *testing.T) {
	// Less than one whole day left floors to 0.
	info := EvaluateStatus(true, endIn(6*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpired, info.Status)
	assert.Equal(t, 0, info.DaysLeft)
	assert.Equal(t, 0, info.rawDays)
}

func TestEvaluateStatus_PastEndStillFlaggedActive(t *testing.T) {
	// The sweep has not flipped the flag yet; status reports expired and
	// the displayed days never go negative.
	info := EvaluateStatus(true, endIn(-5*24*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpired, info.Status)
	assert.Equal(t, 0, info.DaysLeft)
	assert.Equal(t, -5, info.rawDays)
}

func TestEvaluateStatus_FloorNotRound(t *testing.T) {
	// 3 days and 20 hours is still "3 days left", not 4.
	info := EvaluateStatus(true, endIn(3*24*time.Hour+20*time.Hour), statusNow)
	assert.Equal(t, types.StatusExpiringSoon, info.Status)
	assert.Equal(t, 3, info.DaysLeft)
}
