package session

import (
	"context"
	"time"
)

// NewSession carries the fields needed to open a session.
type NewSession struct {
	SubjectID      string
	SubjectKind    string
	OrganizationID string
	BranchID       string
	CheckIn        time.Time
}

// Repository defines data access for attendance sessions.
//
// Create MUST fail with ErrConflict when an open session already exists for
// the subject anywhere in the system; the backing store enforces this with a
// partial unique index on (subject_id) WHERE check_out IS NULL so that the
// check is atomic rather than read-then-write.
type Repository interface {
	// FindOpenSession returns the subject's open session, or nil.
	FindOpenSession(ctx context.Context, subjectID string) (*Session, error)

	// FindOpenSessionAtBranch returns the subject's open session at the
	// given branch, or nil.
	FindOpenSessionAtBranch(ctx context.Context, subjectID, branchID string) (*Session, error)

	// Create opens a new session. Returns ErrConflict if the subject
	// already has an open session.
	Create(ctx context.Context, ns NewSession) (Session, error)

	// Close closes an open session exactly once. Returns ErrSessionNotFound
	// if the session does not exist or is already closed.
	Close(ctx context.Context, id string, checkOut time.Time, durationMinutes int, status Status) (Session, error)

	// FindStaleOpen returns open sessions whose check-in is before the
	// given cutoff.
	FindStaleOpen(ctx context.Context, before time.Time) ([]Session, error)

	// List retrieves sessions with filters and pagination, scoped to one
	// organization.
	List(ctx context.Context, filter SessionFilter, organizationID string) ([]Session, int64, error)

	// ListForSubject retrieves sessions for one subject.
	ListForSubject(ctx context.Context, subjectID string, filter MySessionFilter, organizationID string) ([]Session, int64, error)
}

// TxManager runs a function inside one atomic transaction. Reconciler
// transitions (close-then-create included) execute through it so that
// concurrent scans for the same subject are linearizable.
type TxManager interface {
	// WithSerializable runs fn in a serializable transaction. A
	// serialization failure or unique-constraint violation inside fn
	// surfaces as ErrConflict.
	WithSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
