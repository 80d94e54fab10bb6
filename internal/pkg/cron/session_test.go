package cron

import (
	"context"
	"testing"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	stale  []session.Session
	closed map[string]session.Status
}

func (f *fakeSessionRepo) FindStaleOpen(ctx context.Context, before time.Time) ([]session.Session, error) {
	var out []session.Session
	for _, s := range f.stale {
		if s.CheckIn.Before(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Close(ctx context.Context, id string, checkOut time.Time, durationMinutes int, status session.Status) (session.Session, error) {
	if f.closed == nil {
		f.closed = make(map[string]session.Status)
	}
	f.closed[id] = status
	return session.Session{ID: id, Status: status}, nil
}

func (f *fakeSessionRepo) FindOpenSession(ctx context.Context, subjectID string) (*session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) FindOpenSessionAtBranch(ctx context.Context, subjectID, branchID string) (*session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, ns session.NewSession) (session.Session, error) {
	return session.Session{}, nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter session.SessionFilter, organizationID string) ([]session.Session, int64, error) {
	return nil, 0, nil
}

func (f *fakeSessionRepo) ListForSubject(ctx context.Context, subjectID string, filter session.MySessionFilter, organizationID string) ([]session.Session, int64, error) {
	return nil, 0, nil
}

func TestAutoCloseStaleSessions(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeSessionRepo{
		stale: []session.Session{
			{ID: "old", SubjectID: "subj-1", CheckIn: now.Add(-20 * time.Hour)},
			{ID: "fresh", SubjectID: "subj-2", CheckIn: now.Add(-2 * time.Hour)},
		},
	}
	hub := sse.NewHub()
	jobs := NewSessionJobs(repo, hub, 16*time.Hour)

	err := jobs.AutoCloseStaleSessions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, session.StatusAutoCheckout, repo.closed["old"])
	_, freshClosed := repo.closed["fresh"]
	assert.False(t, freshClosed)
}
