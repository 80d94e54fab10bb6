package session

import (
	"time"
)

// Status is the classification assigned to a session. Open sessions carry
// StatusPresent as a placeholder until they are closed.
type Status string

const (
	StatusPresent      Status = "present"
	StatusShortSession Status = "short_session"
	StatusFullDay      Status = "full_day"
	StatusAutoCheckout Status = "auto_checkout"
)

// Session is one check-in/check-out cycle for a subject at a branch.
// A session is open while CheckOut is nil and immutable once closed.
type Session struct {
	ID              string
	SubjectID       string
	SubjectKind     string
	OrganizationID  string
	BranchID        string
	CheckIn         time.Time
	CheckOut        *time.Time
	DurationMinutes *int
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	SubjectName *string
	BranchName  *string
}

// Open reports whether the session has not been closed yet.
func (s Session) Open() bool {
	return s.CheckOut == nil
}
