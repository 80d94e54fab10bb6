package subject

import (
	"context"
)

// Repository defines read access to the identity directory.
type Repository interface {
	// GetByID retrieves a subject by id.
	GetByID(ctx context.Context, id string) (Subject, error)
}
