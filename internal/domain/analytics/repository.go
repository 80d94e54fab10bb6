package analytics

import (
	"context"
	"time"
)

// TotalsData is the raw aggregate a totals query returns.
type TotalsData struct {
	Sessions     int64
	TotalMinutes int64
}

// CheckInFilter scopes a check-in time query to one subject or one branch,
// optionally bounded by a time window.
type CheckInFilter struct {
	SubjectID *string
	BranchID  *string
	From      *time.Time
	To        *time.Time
}

// Repository defines the read-only aggregate queries over the session log.
// All reads run against a snapshot; no locking is required.
type Repository interface {
	// Totals returns session count and summed duration for a subject in
	// [from, to).
	Totals(ctx context.Context, subjectID string, from, to time.Time) (TotalsData, error)

	// CheckInTimes returns check-in timestamps matching the filter in
	// ascending order.
	CheckInTimes(ctx context.Context, filter CheckInFilter) ([]time.Time, error)
}
