package session

import (
	"context"
)

// Service defines the attendance transition and read operations.
type Service interface {
	// Scan processes a QR scan. The payload resolves to either a branch
	// (self-service kiosk) or a subject (staff desk); the counterpart comes
	// from the caller's token.
	Scan(ctx context.Context, req ScanRequest) (ActionResponse, error)

	// Manual processes a manual check-in/out, gated by the branch geofence
	// when coordinates are configured.
	Manual(ctx context.Context, req ManualRequest) (ActionResponse, error)

	// GetMySessions retrieves the caller's own session log.
	GetMySessions(ctx context.Context, filter MySessionFilter) (ListSessionsResponse, error)

	// ListSessions retrieves sessions across subjects (staff/admin).
	ListSessions(ctx context.Context, filter SessionFilter) (ListSessionsResponse, error)
}
