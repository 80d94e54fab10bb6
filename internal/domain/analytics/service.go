package analytics

import (
	"context"
)

// Service defines the read-side analytics derived from the session log.
type Service interface {
	// Summary returns the caller's current vs. prior calendar month totals.
	Summary(ctx context.Context) (SummaryResponse, error)

	// Streak returns the caller's current and longest attendance streaks.
	Streak(ctx context.Context) (StreakResponse, error)

	// PeakHours returns the check-in histogram for one branch.
	PeakHours(ctx context.Context, branchID string) (PeakHoursResponse, error)

	// DailyTrend returns a trailing window of daily session counts for the
	// caller.
	DailyTrend(ctx context.Context, days int) (DailyTrendResponse, error)
}
