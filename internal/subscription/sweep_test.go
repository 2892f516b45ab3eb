package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/types"
)

var sweepNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestSweeper(users *fakeUserStore) *Sweeper {
	s := NewSweeper(users, NewUserLocks())
	s.Now = func() time.Time { return sweepNow }
	return s
}

func sweepEnd(d time.Duration) string {
	return format.FormatDBDate(sweepNow.Add(d))
}

func TestExpireOverdue_DeactivatesPastEnd(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: true, IsDiamond: true, SubEnd: sweepEnd(-24 * time.Hour)},
		&types.User{UserID: 2, SubActive: true, SubEnd: sweepEnd(48 * time.Hour)},
		&types.User{UserID: 3, SubActive: false, SubEnd: sweepEnd(-24 * time.Hour)},
	)
	s := newTestSweeper(users)

	expired, err := s.ExpireOverdue()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, expired)

	assert.False(t, users.users[1].SubActive)
	assert.False(t, users.users[1].IsDiamond)
	assert.True(t, users.users[2].SubActive)
	assert.Equal(t, []int64{1}, users.deactivated)
}

func TestExpireOverdue_SkipsUnparsableEndDate(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: true, SubEnd: "когда-нибудь"},
	)
	s := newTestSweeper(users)

	expired, err := s.ExpireOverdue()
	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.True(t, users.users[1].SubActive)
}

func TestScanExpiring_ExactDayBuckets(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: true, SubEnd: sweepEnd(3 * 24 * time.Hour)},
		&types.User{UserID: 2, SubActive: true, SubEnd: sweepEnd(6 * time.Hour)},
		&types.User{UserID: 3, SubActive: true, SubEnd: sweepEnd(4 * 24 * time.Hour)},
		&types.User{UserID: 4, SubActive: true, SubEnd: sweepEnd(2 * 24 * time.Hour)},
		&types.User{UserID: 5, SubActive: false, SubEnd: sweepEnd(3 * 24 * time.Hour)},
		&types.User{UserID: 6, SubActive: true, SubEnd: ""},
	)
	s := newTestSweeper(users)

	cohorts, err := s.ScanExpiring()
	require.NoError(t, err)

	require.Len(t, cohorts.ThreeDays, 1)
	assert.Equal(t, int64(1), cohorts.ThreeDays[0].UserID)

	require.Len(t, cohorts.LastDay, 1)
	assert.Equal(t, int64(2), cohorts.LastDay[0].UserID)
}

func TestScanExpiring_SkipsUnparsableEndDate(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: true, SubEnd: "???"},
	)
	s := newTestSweeper(users)

	cohorts, err := s.ScanExpiring()
	require.NoError(t, err)
	assert.Empty(t, cohorts.ThreeDays)
	assert.Empty(t, cohorts.LastDay)
}

func TestScanLapsed_ExactDayBuckets(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: false, SubEnd: sweepEnd(-3 * 24 * time.Hour)},
		&types.User{UserID: 2, SubActive: false, SubEnd: sweepEnd(-7 * 24 * time.Hour)},
		&types.User{UserID: 3, SubActive: false, SubEnd: sweepEnd(-5 * 24 * time.Hour)},
		&types.User{UserID: 4, SubActive: true, SubEnd: sweepEnd(-3 * 24 * time.Hour)},
		&types.User{UserID: 5, SubActive: false, SubEnd: ""},
	)
	s := newTestSweeper(users)

	cohorts, err := s.ScanLapsed()
	require.NoError(t, err)

	require.Len(t, cohorts.ThreeDays, 1)
	assert.Equal(t, int64(1), cohorts.ThreeDays[0].UserID)

	require.Len(t, cohorts.SevenDays, 1)
	assert.Equal(t, int64(2), cohorts.SevenDays[0].UserID)
}

func TestScanLapsed_PartialDaysFloor(t *testing.T) {
	// 3 days and 10 hours ago still floors to 3.
	users := newFakeUserStore(
		&types.User{UserID: 1, SubActive: false, SubEnd: sweepEnd(-(3*24 + 10) * time.Hour)},
	)
	s := newTestSweeper(users)

	cohorts, err := s.ScanLapsed()
	require.NoError(t, err)
	require.Len(t, cohorts.ThreeDays, 1)
}
