package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/plan"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/domain/subject"
	"github.com/seatsync/library-backend-go/internal/service/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type closeCall struct {
	ID              string
	CheckOut        time.Time
	DurationMinutes int
	Status          session.Status
}

type fakeSessionRepo struct {
	open *session.Session

	created *session.NewSession
	closed  *closeCall

	createErr error
}

func (f *fakeSessionRepo) FindOpenSession(ctx context.Context, subjectID string) (*session.Session, error) {
	if f.open != nil && f.open.SubjectID == subjectID {
		return f.open, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) FindOpenSessionAtBranch(ctx context.Context, subjectID, branchID string) (*session.Session, error) {
	if f.open != nil && f.open.SubjectID == subjectID && f.open.BranchID == branchID {
		return f.open, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, ns session.NewSession) (session.Session, error) {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return session.Session{}, err
	}
	f.created = &ns
	return session.Session{
		ID:             "sess-new",
		SubjectID:      ns.SubjectID,
		SubjectKind:    ns.SubjectKind,
		OrganizationID: ns.OrganizationID,
		BranchID:       ns.BranchID,
		CheckIn:        ns.CheckIn,
		Status:         session.StatusPresent,
	}, nil
}

func (f *fakeSessionRepo) Close(ctx context.Context, id string, checkOut time.Time, durationMinutes int, status session.Status) (session.Session, error) {
	if f.open == nil || f.open.ID != id {
		return session.Session{}, session.ErrSessionNotFound
	}
	f.closed = &closeCall{ID: id, CheckOut: checkOut, DurationMinutes: durationMinutes, Status: status}
	closed := *f.open
	closed.CheckOut = &checkOut
	closed.DurationMinutes = &durationMinutes
	closed.Status = status
	f.open = nil
	return closed, nil
}

func (f *fakeSessionRepo) FindStaleOpen(ctx context.Context, before time.Time) ([]session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter session.SessionFilter, organizationID string) ([]session.Session, int64, error) {
	return nil, 0, nil
}

func (f *fakeSessionRepo) ListForSubject(ctx context.Context, subjectID string, filter session.MySessionFilter, organizationID string) ([]session.Session, int64, error) {
	return nil, 0, nil
}

type fakeBranchRepo struct {
	branches map[string]branch.Branch
}

func (f *fakeBranchRepo) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	if b, ok := f.branches[id]; ok {
		return b, nil
	}
	return branch.Branch{}, branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) GetByQRCode(ctx context.Context, qrCode string) (branch.Branch, error) {
	for _, b := range f.branches {
		if b.QRCode == qrCode {
			return b, nil
		}
	}
	return branch.Branch{}, branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) TimezoneBySubjectID(ctx context.Context, subjectID string) (string, error) {
	return "UTC", nil
}

func (f *fakeBranchRepo) ListByOrganization(ctx context.Context, organizationID string) ([]branch.Branch, error) {
	return nil, nil
}

type fakeSubjectRepo struct {
	subjects map[string]subject.Subject
}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string) (subject.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		return s, nil
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

type fakePlanRepo struct {
	policy *plan.Policy
}

func (f *fakePlanRepo) FindActivePolicy(ctx context.Context, subjectID string, at time.Time) (*plan.Policy, error) {
	return f.policy, nil
}

// fakeTx runs the function directly; conflicts counts down forced
// session.ErrConflict results before letting fn run.
type fakeTx struct {
	conflicts int
	calls     int
}

func (f *fakeTx) WithSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.conflicts > 0 {
		f.conflicts--
		return session.ErrConflict
	}
	return fn(ctx)
}

// ========================================
// FIXTURE
// ========================================

const (
	testSubjectID = "subj-1"
	testOrgID     = "org-1"
	testBranchA   = "br-a"
	testBranchB   = "br-b"
)

type fixture struct {
	svc      *SessionServiceImpl
	sessions *fakeSessionRepo
	branches *fakeBranchRepo
	subjects *fakeSubjectRepo
	plans    *fakePlanRepo
	tx       *fakeTx
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions := &fakeSessionRepo{}
	branches := &fakeBranchRepo{branches: map[string]branch.Branch{
		testBranchA: {ID: testBranchA, OrganizationID: testOrgID, Name: "Central", QRCode: "QR-A", Timezone: "UTC"},
		testBranchB: {ID: testBranchB, OrganizationID: testOrgID, Name: "Annex", QRCode: "QR-B", Timezone: "UTC"},
	}}
	subjects := &fakeSubjectRepo{subjects: map[string]subject.Subject{
		testSubjectID: {ID: testSubjectID, OrganizationID: testOrgID, BranchID: testBranchA, Kind: subject.KindStudent, FullName: "Ana", Active: true},
	}}
	plans := &fakePlanRepo{}
	tx := &fakeTx{}

	svc := NewSessionService(
		sessions, branches, subjects, plans, tx,
		scan.NewResolver(branches, subjects), nil,
	).(*SessionServiceImpl)

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, sessions: sessions, branches: branches, subjects: subjects, plans: plans, tx: tx, now: now}
}

func authedContext(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := ja.Encode(claims)
	require.NoError(t, err)
	token, err := ja.Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func studentContext(t *testing.T) context.Context {
	return authedContext(t, map[string]interface{}{
		"subject_id":      testSubjectID,
		"organization_id": testOrgID,
		"role":            "student",
		"type":            "access",
	})
}

func openSessionAt(f *fixture, branchID string, checkedInAgo time.Duration) {
	checkIn := f.now.Add(-checkedInAgo)
	f.sessions.open = &session.Session{
		ID:             "sess-open",
		SubjectID:      testSubjectID,
		SubjectKind:    string(subject.KindStudent),
		OrganizationID: testOrgID,
		BranchID:       branchID,
		CheckIn:        checkIn,
		Status:         session.StatusPresent,
	}
}

// ========================================
// MANUAL FLOW
// ========================================

func TestManualCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)

	resp, err := f.svc.Manual(ctx, session.ManualRequest{BranchID: testBranchA})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckIn, resp.Type)
	assert.Equal(t, "sess-new", resp.SessionID)
	assert.Equal(t, "Central", resp.BranchName)
	assert.Equal(t, session.StatusPresent, resp.Status)
	require.NotNil(t, f.sessions.created)
	assert.Equal(t, testSubjectID, f.sessions.created.SubjectID)
	assert.Equal(t, f.now, f.sessions.created.CheckIn)
}

func TestManualCheckOutSameBranch(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)
	openSessionAt(f, testBranchA, 90*time.Minute)

	resp, err := f.svc.Manual(ctx, session.ManualRequest{BranchID: testBranchA})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckOut, resp.Type)
	assert.Equal(t, session.StatusShortSession, resp.Status)
	require.NotNil(t, resp.DurationMinutes)
	assert.Equal(t, 90, *resp.DurationMinutes)
	require.NotNil(t, f.sessions.closed)
	assert.Equal(t, "sess-open", f.sessions.closed.ID)
}

func TestManualCheckOutCarriesPolicyTags(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)
	openSessionAt(f, testBranchA, 5*time.Hour)

	hours := 4.0
	f.plans.policy = &plan.Policy{SubjectID: testSubjectID, HoursPerDay: &hours}

	resp, err := f.svc.Manual(ctx, session.ManualRequest{BranchID: testBranchA})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckOut, resp.Type)
	assert.Equal(t, []string{"Overstay (+1h 0m)"}, resp.Messages)
	// tags stay advisory: the stored status is still duration-based
	assert.Equal(t, session.StatusPresent, resp.Status)
}

func TestManualExplicitActionMismatch(t *testing.T) {
	t.Run("check-in while already checked in", func(t *testing.T) {
		f := newFixture(t)
		openSessionAt(f, testBranchA, time.Hour)

		_, err := f.svc.Manual(studentContext(t), session.ManualRequest{
			BranchID: testBranchA,
			Action:   session.ActionCheckIn,
		})
		assert.ErrorIs(t, err, session.ErrAlreadyCheckedIn)
	})

	t.Run("check-out with no open session", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Manual(studentContext(t), session.ManualRequest{
			BranchID: testBranchA,
			Action:   session.ActionCheckOut,
		})
		assert.ErrorIs(t, err, session.ErrNotCheckedIn)
	})
}

func TestManualCrossBranchAutoCloses(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)
	openSessionAt(f, testBranchA, 2*time.Hour)

	resp, err := f.svc.Manual(ctx, session.ManualRequest{BranchID: testBranchB})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckIn, resp.Type)
	assert.Equal(t, "Annex", resp.BranchName)
	require.NotNil(t, resp.AutoClosedBranch)
	assert.Equal(t, "Central", *resp.AutoClosedBranch)

	require.NotNil(t, f.sessions.closed)
	assert.Equal(t, session.StatusAutoCheckout, f.sessions.closed.Status)
	assert.Equal(t, 120, f.sessions.closed.DurationMinutes)
	require.NotNil(t, f.sessions.created)
	assert.Equal(t, testBranchB, f.sessions.created.BranchID)
}

func TestManualGeofence(t *testing.T) {
	f := newFixture(t)
	lat, lng := -6.2000, 106.8000
	b := f.branches.branches[testBranchA]
	b.Latitude, b.Longitude = &lat, &lng
	f.branches.branches[testBranchA] = b

	t.Run("missing location", func(t *testing.T) {
		_, err := f.svc.Manual(studentContext(t), session.ManualRequest{BranchID: testBranchA})
		assert.ErrorIs(t, err, session.ErrLocationRequired)
	})

	t.Run("too far to check in", func(t *testing.T) {
		_, err := f.svc.Manual(studentContext(t), session.ManualRequest{
			BranchID: testBranchA,
			Location: &session.GeoPoint{Lat: -6.2100, Lng: 106.8000},
		})
		var geoErr *session.GeofenceError
		assert.ErrorAs(t, err, &geoErr)
	})

	t.Run("near enough to check in", func(t *testing.T) {
		resp, err := f.svc.Manual(studentContext(t), session.ManualRequest{
			BranchID: testBranchA,
			Location: &session.GeoPoint{Lat: -6.2003, Lng: 106.8000},
		})
		require.NoError(t, err)
		assert.Equal(t, session.ActionCheckIn, resp.Type)
	})
}

func TestManualConflictRetriesOnce(t *testing.T) {
	f := newFixture(t)
	f.tx.conflicts = 1

	resp, err := f.svc.Manual(studentContext(t), session.ManualRequest{BranchID: testBranchA})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckIn, resp.Type)
	assert.Equal(t, 2, f.tx.calls)
}

func TestManualConflictGivesUpAfterRetry(t *testing.T) {
	f := newFixture(t)
	f.tx.conflicts = 2

	_, err := f.svc.Manual(studentContext(t), session.ManualRequest{BranchID: testBranchA})
	assert.ErrorIs(t, err, session.ErrConflict)
	assert.Equal(t, 2, f.tx.calls)
}

// ========================================
// SCAN FLOW
// ========================================

func TestScanBranchQR(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)

	resp, err := f.svc.Scan(ctx, session.ScanRequest{Payload: "QR-A"})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckIn, resp.Type)
	assert.Equal(t, "Central", resp.BranchName)
}

func TestScanStructuredBranchQRTogglesCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := studentContext(t)
	openSessionAt(f, testBranchA, 3*time.Hour)

	resp, err := f.svc.Scan(ctx, session.ScanRequest{Payload: `{"code": "QR-A"}`})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckOut, resp.Type)
	assert.Equal(t, session.StatusPresent, resp.Status)
}

func TestScanSubjectCardAtStaffDesk(t *testing.T) {
	f := newFixture(t)
	f.subjects.subjects["subj-2"] = subject.Subject{
		ID: "subj-2", OrganizationID: testOrgID, BranchID: testBranchA,
		Kind: subject.KindStudent, FullName: "Ben", Active: true,
	}
	ctx := authedContext(t, map[string]interface{}{
		"subject_id":      testSubjectID,
		"organization_id": testOrgID,
		"branch_id":       testBranchA,
		"role":            "staff",
		"type":            "access",
	})

	resp, err := f.svc.Scan(ctx, session.ScanRequest{Payload: `{"id": "subj-2"}`})
	require.NoError(t, err)

	assert.Equal(t, session.ActionCheckIn, resp.Type)
	require.NotNil(t, f.sessions.created)
	assert.Equal(t, "subj-2", f.sessions.created.SubjectID)
	assert.Equal(t, testBranchA, f.sessions.created.BranchID)
}

func TestScanUnresolvableToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Scan(studentContext(t), session.ScanRequest{Payload: "no-such-code"})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestScanInactiveSubject(t *testing.T) {
	f := newFixture(t)
	s := f.subjects.subjects[testSubjectID]
	s.Active = false
	f.subjects.subjects[testSubjectID] = s

	_, err := f.svc.Scan(studentContext(t), session.ScanRequest{Payload: "QR-A"})
	assert.ErrorIs(t, err, subject.ErrSubjectInactive)
}

func TestScanMissingClaims(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Scan(context.Background(), session.ScanRequest{Payload: "QR-A"})
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}
