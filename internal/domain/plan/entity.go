package plan

import "time"

// Policy is a read-only view of the subscription plan active for a subject
// during a window. Either HoursPerDay (flexible plans) or ShiftStart and
// ShiftEnd (fixed-shift plans) is set, never both. Policies only produce
// advisory tags; they never block a transition.
type Policy struct {
	ID             string
	OrganizationID string
	SubjectID      string
	HoursPerDay    *float64
	ShiftStart     *string // "HH:MM"
	ShiftEnd       *string // "HH:MM"
	StartDate      time.Time
	EndDate        time.Time
}
