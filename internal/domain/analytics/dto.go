package analytics

// PeriodTotals is session count and summed duration for one window.
type PeriodTotals struct {
	Sessions   int64   `json:"sessions"`
	TotalHours float64 `json:"total_hours"` // rounded to 1 decimal
}

// SummaryResponse compares the current calendar month against the prior
// one.
type SummaryResponse struct {
	CurrentMonth  PeriodTotals `json:"current_month"`
	PreviousMonth PeriodTotals `json:"previous_month"`
}

// StreakResponse reports attendance streaks in calendar days.
type StreakResponse struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// PeakHoursResponse is a check-in histogram bucketed by hour of day.
type PeakHoursResponse struct {
	PeakHour  int     `json:"peak_hour"`
	Histogram [24]int `json:"histogram"`
}

// DailyCount is one day in a trend window.
type DailyCount struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Sessions int    `json:"sessions"`
}

// DailyTrendResponse is a fixed-width trailing window of daily session
// counts, zero-filled for days without sessions.
type DailyTrendResponse struct {
	Days  int          `json:"days"`
	Trend []DailyCount `json:"trend"`
}
