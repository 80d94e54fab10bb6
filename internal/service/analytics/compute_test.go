package analytics

import (
	"testing"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("bad time literal %q: %v", value, err)
	}
	return parsed
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 0.0, roundHours(0))
	assert.Equal(t, 1.0, roundHours(60))
	assert.Equal(t, 1.5, roundHours(90))
	assert.Equal(t, 2.1, roundHours(125))
	assert.Equal(t, 0.1, roundHours(5))
}

func TestStreakStats(t *testing.T) {
	now := day(t, "2026-03-10 12:00")

	t.Run("no check-ins", func(t *testing.T) {
		current, longest := streakStats(nil, time.UTC, now)
		assert.Equal(t, 0, current)
		assert.Equal(t, 0, longest)
	})

	t.Run("streak ending today", func(t *testing.T) {
		checkIns := []time.Time{
			day(t, "2026-03-08 09:00"),
			day(t, "2026-03-09 10:00"),
			day(t, "2026-03-10 08:00"),
		}
		current, longest := streakStats(checkIns, time.UTC, now)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("streak ending yesterday still counts", func(t *testing.T) {
		checkIns := []time.Time{
			day(t, "2026-03-08 09:00"),
			day(t, "2026-03-09 10:00"),
		}
		current, longest := streakStats(checkIns, time.UTC, now)
		assert.Equal(t, 2, current)
		assert.Equal(t, 2, longest)
	})

	t.Run("stale streak resets current but keeps longest", func(t *testing.T) {
		checkIns := []time.Time{
			day(t, "2026-03-02 09:00"),
			day(t, "2026-03-03 09:00"),
			day(t, "2026-03-04 09:00"),
			day(t, "2026-03-06 09:00"),
		}
		current, longest := streakStats(checkIns, time.UTC, now)
		assert.Equal(t, 0, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("multiple same-day check-ins count once", func(t *testing.T) {
		checkIns := []time.Time{
			day(t, "2026-03-09 09:00"),
			day(t, "2026-03-09 14:00"),
			day(t, "2026-03-10 09:00"),
		}
		current, longest := streakStats(checkIns, time.UTC, now)
		assert.Equal(t, 2, current)
		assert.Equal(t, 2, longest)
	})

	t.Run("day boundary follows the local timezone", func(t *testing.T) {
		jakarta, err := time.LoadLocation("Asia/Jakarta")
		assert.NoError(t, err)
		// 18:00 UTC on the 9th is already the 10th in Jakarta (UTC+7).
		checkIns := []time.Time{day(t, "2026-03-09 18:00")}
		current, longest := streakStats(checkIns, jakarta, day(t, "2026-03-10 03:00"))
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, longest)
	})
}

func TestPeakHours(t *testing.T) {
	checkIns := []time.Time{
		day(t, "2026-03-08 09:15"),
		day(t, "2026-03-08 09:45"),
		day(t, "2026-03-09 14:00"),
	}

	got := peakHours(checkIns, time.UTC)
	assert.Equal(t, 9, got.PeakHour)
	assert.Equal(t, 2, got.Histogram[9])
	assert.Equal(t, 1, got.Histogram[14])

	t.Run("empty log", func(t *testing.T) {
		got := peakHours(nil, time.UTC)
		assert.Equal(t, 0, got.PeakHour)
		assert.Equal(t, [24]int{}, got.Histogram)
	})
}

func TestDailyTrend(t *testing.T) {
	now := day(t, "2026-03-10 12:00")
	checkIns := []time.Time{
		day(t, "2026-03-08 09:00"),
		day(t, "2026-03-10 08:00"),
		day(t, "2026-03-10 15:00"),
	}

	trend := dailyTrend(checkIns, time.UTC, now, 3)

	assert.Equal(t, []analytics.DailyCount{
		{Date: "2026-03-08", Sessions: 1},
		{Date: "2026-03-09", Sessions: 0},
		{Date: "2026-03-10", Sessions: 2},
	}, trend)
}
