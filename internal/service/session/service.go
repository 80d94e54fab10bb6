package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/plan"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/domain/subject"
	"github.com/seatsync/library-backend-go/internal/pkg/scantoken"
	"github.com/seatsync/library-backend-go/internal/pkg/sse"
	"github.com/seatsync/library-backend-go/internal/service/scan"
)

type SessionServiceImpl struct {
	sessions session.Repository
	branches branch.Repository
	subjects subject.Repository
	plans    plan.Repository
	tx       session.TxManager
	resolver scan.Resolver
	hub      *sse.Hub

	// now is swappable for tests.
	now func() time.Time
}

func NewSessionService(
	sessions session.Repository,
	branches branch.Repository,
	subjects subject.Repository,
	plans plan.Repository,
	tx session.TxManager,
	resolver scan.Resolver,
	hub *sse.Hub,
) session.Service {
	return &SessionServiceImpl{
		sessions: sessions,
		branches: branches,
		subjects: subjects,
		plans:    plans,
		tx:       tx,
		resolver: resolver,
		hub:      hub,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type caller struct {
	SubjectID      string
	OrganizationID string
	BranchID       string
	Role           string
}

func callerFromContext(ctx context.Context) (caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return caller{}, session.ErrUnauthorized
	}

	subjectID, ok := claims["subject_id"].(string)
	if !ok || subjectID == "" {
		return caller{}, session.ErrUnauthorized
	}
	organizationID, ok := claims["organization_id"].(string)
	if !ok || organizationID == "" {
		return caller{}, session.ErrUnauthorized
	}
	branchID, _ := claims["branch_id"].(string)
	role, _ := claims["role"].(string)

	return caller{
		SubjectID:      subjectID,
		OrganizationID: organizationID,
		BranchID:       branchID,
		Role:           role,
	}, nil
}

// Scan implements session.Service.
func (s *SessionServiceImpl) Scan(ctx context.Context, req session.ScanRequest) (session.ActionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.ActionResponse{}, err
	}

	c, err := callerFromContext(ctx)
	if err != nil {
		return session.ActionResponse{}, err
	}

	token := scantoken.Parse(req.Payload)
	res, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return session.ActionResponse{}, err
	}

	var subj subject.Subject
	var b branch.Branch

	switch {
	case res.Branch != nil:
		// Self-service: the caller scanned a branch QR.
		b = *res.Branch
		subj, err = s.subjects.GetByID(ctx, c.SubjectID)
		if err != nil {
			return session.ActionResponse{}, err
		}
	case res.Subject != nil:
		// Staff desk: the caller scanned a member card; the transition
		// happens at the caller's operating branch.
		subj = *res.Subject
		if c.BranchID == "" {
			return session.ActionResponse{}, session.ErrUnauthorized
		}
		b, err = s.branches.GetByID(ctx, c.BranchID)
		if err != nil {
			return session.ActionResponse{}, err
		}
	default:
		return session.ActionResponse{}, session.ErrNotFound
	}

	if !subj.Active {
		return session.ActionResponse{}, subject.ErrSubjectInactive
	}
	if subj.OrganizationID != c.OrganizationID || b.OrganizationID != subj.OrganizationID {
		return session.ActionResponse{}, session.ErrUnauthorized
	}

	resp, err := s.reconcileWithRetry(ctx, subj, b, "")
	if err != nil {
		return session.ActionResponse{}, err
	}

	s.publish(subj.ID, resp)
	return resp, nil
}

// Manual implements session.Service.
func (s *SessionServiceImpl) Manual(ctx context.Context, req session.ManualRequest) (session.ActionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.ActionResponse{}, err
	}

	c, err := callerFromContext(ctx)
	if err != nil {
		return session.ActionResponse{}, err
	}

	subj, err := s.subjects.GetByID(ctx, c.SubjectID)
	if err != nil {
		return session.ActionResponse{}, err
	}
	if !subj.Active {
		return session.ActionResponse{}, subject.ErrSubjectInactive
	}

	b, err := s.branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return session.ActionResponse{}, err
	}
	if b.OrganizationID != subj.OrganizationID {
		return session.ActionResponse{}, session.ErrUnauthorized
	}

	// Predict the direction to pick the geofence rule. The transaction
	// re-reads state, so a stale prediction only risks a spurious geofence
	// verdict, never a wrong transition.
	action := req.Action
	if action == "" {
		open, err := s.sessions.FindOpenSessionAtBranch(ctx, subj.ID, b.ID)
		if err != nil {
			return session.ActionResponse{}, err
		}
		if open == nil {
			action = session.ActionCheckIn
		} else {
			action = session.ActionCheckOut
		}
	}

	if err := checkGeofence(b, req.Location, action); err != nil {
		return session.ActionResponse{}, err
	}

	resp, err := s.reconcileWithRetry(ctx, subj, b, req.Action)
	if err != nil {
		return session.ActionResponse{}, err
	}

	s.publish(subj.ID, resp)
	return resp, nil
}

// reconcileWithRetry runs one reconcile transaction and retries once on a
// serialization conflict. The loser of a concurrent scan re-reads fresh
// state and usually lands on the opposite transition.
func (s *SessionServiceImpl) reconcileWithRetry(ctx context.Context, subj subject.Subject, b branch.Branch, explicitAction string) (session.ActionResponse, error) {
	resp, err := s.reconcile(ctx, subj, b, explicitAction)
	if err != nil && errors.Is(err, session.ErrConflict) {
		slog.Warn("concurrent attendance scan, retrying once",
			"subject_id", subj.ID, "branch_id", b.ID)
		resp, err = s.reconcile(ctx, subj, b, explicitAction)
	}
	return resp, err
}

// reconcile performs a single atomic attendance transition:
//
//	no open session            -> check-in at b
//	open session at b          -> close it (classified)
//	open session elsewhere     -> auto-close it, then check-in at b
//
// An explicit action that contradicts the observed state fails instead of
// toggling.
func (s *SessionServiceImpl) reconcile(ctx context.Context, subj subject.Subject, b branch.Branch, explicitAction string) (session.ActionResponse, error) {
	var resp session.ActionResponse

	err := s.tx.WithSerializable(ctx, func(ctx context.Context) error {
		now := s.now()

		open, err := s.sessions.FindOpenSession(ctx, subj.ID)
		if err != nil {
			return err
		}

		switch {
		case open == nil:
			if explicitAction == session.ActionCheckOut {
				return session.ErrNotCheckedIn
			}
			created, err := s.sessions.Create(ctx, session.NewSession{
				SubjectID:      subj.ID,
				SubjectKind:    string(subj.Kind),
				OrganizationID: subj.OrganizationID,
				BranchID:       b.ID,
				CheckIn:        now,
			})
			if err != nil {
				return err
			}
			resp = session.ActionResponse{
				Type:       session.ActionCheckIn,
				SessionID:  created.ID,
				BranchName: b.Name,
				Timestamp:  created.CheckIn.Format(time.RFC3339),
				Status:     created.Status,
			}
			return nil

		case open.BranchID == b.ID:
			if explicitAction == session.ActionCheckIn {
				return session.ErrAlreadyCheckedIn
			}
			cls := s.classify(ctx, subj.ID, b, open.CheckIn, now)
			closed, err := s.sessions.Close(ctx, open.ID, now, cls.DurationMinutes, cls.Status)
			if err != nil {
				return err
			}
			resp = session.ActionResponse{
				Type:            session.ActionCheckOut,
				SessionID:       closed.ID,
				BranchName:      b.Name,
				Timestamp:       now.Format(time.RFC3339),
				Status:          closed.Status,
				DurationMinutes: closed.DurationMinutes,
				Messages:        cls.Tags,
			}
			return nil

		default:
			// Open session at another branch: the subject moved without
			// checking out. Close it administratively, then open here.
			if explicitAction == session.ActionCheckOut {
				return session.ErrNotCheckedIn
			}
			dur := session.DurationMinutes(open.CheckIn, now)
			if _, err := s.sessions.Close(ctx, open.ID, now, dur, session.StatusAutoCheckout); err != nil {
				return err
			}
			created, err := s.sessions.Create(ctx, session.NewSession{
				SubjectID:      subj.ID,
				SubjectKind:    string(subj.Kind),
				OrganizationID: subj.OrganizationID,
				BranchID:       b.ID,
				CheckIn:        now,
			})
			if err != nil {
				return err
			}
			resp = session.ActionResponse{
				Type:             session.ActionCheckIn,
				SessionID:        created.ID,
				BranchName:       b.Name,
				Timestamp:        created.CheckIn.Format(time.RFC3339),
				Status:           created.Status,
				AutoClosedBranch: s.branchName(ctx, open.BranchID),
			}
			return nil
		}
	})

	if err != nil {
		return session.ActionResponse{}, err
	}
	return resp, nil
}

// classify computes the closing classification in the branch's local time.
// Policy lookup failures degrade to an untagged close; the transition must
// never be blocked by the billing subsystem.
func (s *SessionServiceImpl) classify(ctx context.Context, subjectID string, b branch.Branch, checkIn, checkOut time.Time) session.Classification {
	policy, err := s.plans.FindActivePolicy(ctx, subjectID, checkIn)
	if err != nil {
		slog.Warn("failed to load plan policy, closing without tags",
			"subject_id", subjectID, "error", err)
		policy = nil
	}

	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		slog.Warn("invalid branch timezone, falling back to UTC",
			"branch_id", b.ID, "timezone", b.Timezone)
		loc = time.UTC
	}

	return session.Classify(checkIn.In(loc), checkOut.In(loc), policy)
}

func (s *SessionServiceImpl) branchName(ctx context.Context, branchID string) *string {
	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil
	}
	return &b.Name
}

func (s *SessionServiceImpl) publish(subjectID string, resp session.ActionResponse) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(subjectID, sse.Event{
		SubjectID: subjectID,
		Event:     "attendance.updated",
		Data:      resp,
	})
}

// GetMySessions implements session.Service.
func (s *SessionServiceImpl) GetMySessions(ctx context.Context, filter session.MySessionFilter) (session.ListSessionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return session.ListSessionsResponse{}, err
	}

	c, err := callerFromContext(ctx)
	if err != nil {
		return session.ListSessionsResponse{}, err
	}

	sessions, total, err := s.sessions.ListForSubject(ctx, c.SubjectID, filter, c.OrganizationID)
	if err != nil {
		return session.ListSessionsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	return buildListResponse(sessions, total, filter.Page, filter.Limit), nil
}

// ListSessions implements session.Service.
func (s *SessionServiceImpl) ListSessions(ctx context.Context, filter session.SessionFilter) (session.ListSessionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return session.ListSessionsResponse{}, err
	}

	c, err := callerFromContext(ctx)
	if err != nil {
		return session.ListSessionsResponse{}, err
	}
	if c.Role != "staff" && c.Role != "admin" {
		return session.ListSessionsResponse{}, session.ErrUnauthorized
	}

	sessions, total, err := s.sessions.List(ctx, filter, c.OrganizationID)
	if err != nil {
		return session.ListSessionsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	return buildListResponse(sessions, total, filter.Page, filter.Limit), nil
}

func buildListResponse(sessions []session.Session, total int64, page, limit int) session.ListSessionsResponse {
	responses := make([]session.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, toSessionResponse(sess))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	showingStart := (page-1)*limit + 1
	showingEnd := showingStart + len(sessions) - 1
	showing := fmt.Sprintf("%d-%d of %d", showingStart, showingEnd, total)
	if len(sessions) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return session.ListSessionsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Showing:    showing,
		Sessions:   responses,
	}
}

func toSessionResponse(s session.Session) session.SessionResponse {
	resp := session.SessionResponse{
		ID:              s.ID,
		SubjectID:       s.SubjectID,
		SubjectKind:     s.SubjectKind,
		SubjectName:     s.SubjectName,
		BranchID:        s.BranchID,
		BranchName:      s.BranchName,
		CheckIn:         s.CheckIn.Format(time.RFC3339),
		DurationMinutes: s.DurationMinutes,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
	if s.CheckOut != nil {
		out := s.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &out
	}
	return resp
}
