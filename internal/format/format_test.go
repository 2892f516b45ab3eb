package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDBDate_RoundTrip(t *testing.T) {
	raw := "2026-03-15 18:30:00"
	parsed, err := ParseDBDate(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, FormatDBDate(parsed))
}

func TestParseDBDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "15.03.2026", "2026-03-15", "not a date"} {
		_, err := ParseDBDate(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestUserDate(t *testing.T) {
	assert.Equal(t, "15.03.2026", UserDate("2026-03-15 18:30:00"))
	// Unparsable input is surfaced untouched.
	assert.Equal(t, "soon(tm)", UserDate("soon(tm)"))
}

func TestDaysWord(t *testing.T) {
	cases := map[int]string{
		0:   "дней",
		1:   "день",
		2:   "дня",
		3:   "дня",
		4:   "дня",
		5:   "дней",
		11:  "дней",
		12:  "дней",
		21:  "день",
		22:  "дня",
		25:  "дней",
		101: "день",
		111: "дней",
	}
	for days, want := range cases {
		assert.Equal(t, want, DaysWord(days), "days %d", days)
	}
}

func TestUserCount(t *testing.T) {
	assert.Equal(t, "1 пользователь", UserCount(1))
	assert.Equal(t, "3 пользователя", UserCount(3))
	assert.Equal(t, "17 пользователей", UserCount(17))
	assert.Equal(t, "21 пользователь", UserCount(21))
}

func TestFormatDBDate_UTCWallClock(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-01-02 03:04:05", FormatDBDate(ts))
}
