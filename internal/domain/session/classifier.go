package session

import (
	"fmt"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/plan"
)

// Classification thresholds. Durations are whole minutes.
const (
	shortSessionUnderMinutes = 120
	fullDayOverMinutes       = 360

	lateGrace        = 15 * time.Minute
	overstayBuffer   = 10 * time.Minute
	earlyLeaveBuffer = 30 * time.Minute
)

// Classification is the result of closing a session: the computed duration,
// the base status, and any advisory tags derived from the subject's plan.
// Tags are informational only and never change the status.
type Classification struct {
	DurationMinutes int
	Status          Status
	Tags            []string
}

// DurationMinutes computes the whole minutes between check-in and
// check-out, floored at zero.
func DurationMinutes(checkIn, checkOut time.Time) int {
	mins := int(checkOut.Sub(checkIn) / time.Minute)
	if mins < 0 {
		return 0
	}
	return mins
}

// Classify computes duration, base status and advisory tags for a voluntary
// close. policy may be nil; the base status is always policy-independent.
// Auto-checkout closes bypass this entirely.
func Classify(checkIn, checkOut time.Time, policy *plan.Policy) Classification {
	c := Classification{DurationMinutes: DurationMinutes(checkIn, checkOut)}
	c.Status = baseStatus(c.DurationMinutes)

	if policy == nil {
		return c
	}

	if policy.HoursPerDay != nil {
		// Flexible plan: only an overstay tag applies.
		allowed := int(*policy.HoursPerDay * 60)
		if c.DurationMinutes > allowed {
			c.Tags = append(c.Tags, fmt.Sprintf("Overstay (+%s)", formatHoursMinutes(c.DurationMinutes-allowed)))
		}
		return c
	}

	if policy.ShiftStart == nil || policy.ShiftEnd == nil {
		return c
	}

	// Fixed shift: anchor shift times on the check-in calendar day.
	shiftStart, ok := atClock(checkIn, *policy.ShiftStart)
	if !ok {
		return c
	}
	shiftEnd, ok := atClock(checkIn, *policy.ShiftEnd)
	if !ok {
		return c
	}

	if checkIn.After(shiftStart.Add(lateGrace)) {
		late := int(checkIn.Sub(shiftStart) / time.Minute)
		c.Tags = append(c.Tags, fmt.Sprintf("Late (+%dm)", late))
	}
	if checkOut.After(shiftEnd.Add(overstayBuffer)) {
		over := int(checkOut.Sub(shiftEnd) / time.Minute)
		c.Tags = append(c.Tags, fmt.Sprintf("Overstay (+%dm)", over))
	}
	if checkOut.Before(shiftEnd.Add(-earlyLeaveBuffer)) {
		short := int(shiftEnd.Sub(checkOut) / time.Minute)
		c.Tags = append(c.Tags, fmt.Sprintf("Early Leave (-%s)", formatHoursMinutes(short)))
	}

	return c
}

func baseStatus(durationMinutes int) Status {
	switch {
	case durationMinutes < shortSessionUnderMinutes:
		return StatusShortSession
	case durationMinutes > fullDayOverMinutes:
		return StatusFullDay
	default:
		return StatusPresent
	}
}

// atClock places an "HH:MM" clock value on t's calendar day in t's
// location.
func atClock(t time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		t.Location(),
	), true
}

func formatHoursMinutes(mins int) string {
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
