package plan

import (
	"context"
	"time"
)

// Repository defines read access to the billing subsystem's plan policies.
type Repository interface {
	// FindActivePolicy returns the policy whose validity window contains
	// at, or nil when the subject has none.
	FindActivePolicy(ctx context.Context, subjectID string, at time.Time) (*Policy, error)
}
