package branch

import (
	"context"
)

// Repository defines read access to the branch directory.
type Repository interface {
	// GetByID retrieves a branch by id.
	GetByID(ctx context.Context, id string) (Branch, error)

	// GetByQRCode retrieves a branch by its opaque QR token.
	GetByQRCode(ctx context.Context, qrCode string) (Branch, error)

	// TimezoneBySubjectID returns the IANA timezone of the subject's home
	// branch.
	TimezoneBySubjectID(ctx context.Context, subjectID string) (string, error)

	// ListByOrganization lists all branches of an organization.
	ListByOrganization(ctx context.Context, organizationID string) ([]Branch, error)
}
