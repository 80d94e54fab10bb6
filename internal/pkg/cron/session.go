package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/pkg/sse"
)

// SessionJobs closes sessions whose owner never scanned out. The close is
// involuntary, so the session gets the auto_checkout status and no
// advisory tags, same as a cross-branch conflict close.
type SessionJobs struct {
	sessions session.Repository
	hub      *sse.Hub
	maxOpen  time.Duration
}

func NewSessionJobs(sessions session.Repository, hub *sse.Hub, maxOpen time.Duration) *SessionJobs {
	return &SessionJobs{
		sessions: sessions,
		hub:      hub,
		maxOpen:  maxOpen,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", 1*time.Hour, j.AutoCloseStaleSessions)
}

func (j *SessionJobs) AutoCloseStaleSessions(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.maxOpen)

	stale, err := j.sessions.FindStaleOpen(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to find stale sessions: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	now := time.Now().UTC()
	closedCount := 0
	for _, s := range stale {
		mins := session.DurationMinutes(s.CheckIn, now)

		if _, err := j.sessions.Close(ctx, s.ID, now, mins, session.StatusAutoCheckout); err != nil {
			slog.Error("Cron: Failed to auto-close session",
				"session_id", s.ID,
				"subject_id", s.SubjectID,
				"error", err)
			continue
		}

		if j.hub != nil {
			j.hub.Publish(s.SubjectID, sse.Event{
				SubjectID: s.SubjectID,
				Event:     "attendance.updated",
				Data:      map[string]interface{}{"session_id": s.ID, "type": "auto-checkout"},
			})
		}

		closedCount++
	}

	slog.Info("Cron: Auto-closed stale sessions", "count", closedCount)
	return nil
}
