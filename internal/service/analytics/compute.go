package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/analytics"
)

// roundHours converts whole minutes to hours rounded to one decimal.
func roundHours(minutes int64) float64 {
	return math.Round(float64(minutes)/60.0*10) / 10
}

// attendedDays reduces check-in timestamps to the sorted distinct calendar
// days they fall on, in loc.
func attendedDays(checkIns []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(checkIns))
	var days []time.Time
	for _, t := range checkIns {
		local := t.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// streakStats computes the current and longest runs of consecutive attended
// days. The current streak counts only if its last day is today or
// yesterday; today without a visit does not break a streak that ended
// yesterday.
func streakStats(checkIns []time.Time, loc *time.Location, now time.Time) (current, longest int) {
	days := attendedDays(checkIns, loc)
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		// AddDate rather than a 24h delta so DST days still chain.
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	last := days[len(days)-1]
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		current = run
	}

	return current, longest
}

// peakHours buckets check-ins by local hour of day. Ties resolve to the
// earliest hour.
func peakHours(checkIns []time.Time, loc *time.Location) analytics.PeakHoursResponse {
	var resp analytics.PeakHoursResponse
	for _, t := range checkIns {
		resp.Histogram[t.In(loc).Hour()]++
	}
	for h := 1; h < 24; h++ {
		if resp.Histogram[h] > resp.Histogram[resp.PeakHour] {
			resp.PeakHour = h
		}
	}
	return resp
}

// dailyTrend builds a zero-filled trailing window of daily session counts
// ending today.
func dailyTrend(checkIns []time.Time, loc *time.Location, now time.Time, days int) []analytics.DailyCount {
	counts := make(map[string]int, len(checkIns))
	for _, t := range checkIns {
		counts[t.In(loc).Format("2006-01-02")]++
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	trend := make([]analytics.DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		trend = append(trend, analytics.DailyCount{
			Date:     date,
			Sessions: counts[date],
		})
	}
	return trend
}
