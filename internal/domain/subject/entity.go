package subject

// Kind distinguishes the two tracked identity kinds. They share the same
// session shape and the same at-most-one-open-session invariant.
type Kind string

const (
	KindStudent Kind = "student"
	KindStaff   Kind = "staff"
)

// Subject is a student or staff member whose attendance is tracked.
type Subject struct {
	ID             string
	OrganizationID string
	BranchID       string
	Kind           Kind
	FullName       string
	Active         bool
}
