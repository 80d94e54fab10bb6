package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/seatsync/library-backend-go/internal/domain/analytics"
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/session"
)

type AnalyticsServiceImpl struct {
	repo     analytics.Repository
	branches branch.Repository

	defaultTrendDays int

	// now is swappable for tests.
	now func() time.Time
}

func NewAnalyticsService(repo analytics.Repository, branches branch.Repository, defaultTrendDays int) analytics.Service {
	return &AnalyticsServiceImpl{
		repo:             repo,
		branches:         branches,
		defaultTrendDays: defaultTrendDays,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func callerFromContext(ctx context.Context) (subjectID, organizationID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", session.ErrUnauthorized
	}

	subjectID, ok := claims["subject_id"].(string)
	if !ok || subjectID == "" {
		return "", "", session.ErrUnauthorized
	}
	organizationID, ok = claims["organization_id"].(string)
	if !ok || organizationID == "" {
		return "", "", session.ErrUnauthorized
	}

	return subjectID, organizationID, nil
}

// location resolves the caller's home-branch timezone, falling back to UTC.
// Analytics are read-only, so a bad timezone degrades instead of failing.
func (s *AnalyticsServiceImpl) location(ctx context.Context, subjectID string) *time.Location {
	tz, err := s.branches.TimezoneBySubjectID(ctx, subjectID)
	if err != nil {
		slog.Warn("failed to resolve subject timezone, using UTC",
			"subject_id", subjectID, "error", err)
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("invalid branch timezone, using UTC",
			"subject_id", subjectID, "timezone", tz)
		return time.UTC
	}
	return loc
}

// Summary implements analytics.Service.
func (s *AnalyticsServiceImpl) Summary(ctx context.Context) (analytics.SummaryResponse, error) {
	subjectID, _, err := callerFromContext(ctx)
	if err != nil {
		return analytics.SummaryResponse{}, err
	}

	loc := s.location(ctx, subjectID)
	local := s.now().In(loc)

	currentStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	nextStart := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	current, err := s.repo.Totals(ctx, subjectID, currentStart, nextStart)
	if err != nil {
		return analytics.SummaryResponse{}, fmt.Errorf("failed to aggregate current month: %w", err)
	}
	previous, err := s.repo.Totals(ctx, subjectID, previousStart, currentStart)
	if err != nil {
		return analytics.SummaryResponse{}, fmt.Errorf("failed to aggregate previous month: %w", err)
	}

	return analytics.SummaryResponse{
		CurrentMonth: analytics.PeriodTotals{
			Sessions:   current.Sessions,
			TotalHours: roundHours(current.TotalMinutes),
		},
		PreviousMonth: analytics.PeriodTotals{
			Sessions:   previous.Sessions,
			TotalHours: roundHours(previous.TotalMinutes),
		},
	}, nil
}

// Streak implements analytics.Service.
func (s *AnalyticsServiceImpl) Streak(ctx context.Context) (analytics.StreakResponse, error) {
	subjectID, _, err := callerFromContext(ctx)
	if err != nil {
		return analytics.StreakResponse{}, err
	}

	checkIns, err := s.repo.CheckInTimes(ctx, analytics.CheckInFilter{SubjectID: &subjectID})
	if err != nil {
		return analytics.StreakResponse{}, fmt.Errorf("failed to load check-in times: %w", err)
	}

	loc := s.location(ctx, subjectID)
	current, longest := streakStats(checkIns, loc, s.now())

	return analytics.StreakResponse{
		CurrentStreak: current,
		LongestStreak: longest,
	}, nil
}

// PeakHours implements analytics.Service.
func (s *AnalyticsServiceImpl) PeakHours(ctx context.Context, branchID string) (analytics.PeakHoursResponse, error) {
	_, organizationID, err := callerFromContext(ctx)
	if err != nil {
		return analytics.PeakHoursResponse{}, err
	}

	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return analytics.PeakHoursResponse{}, err
	}
	if b.OrganizationID != organizationID {
		return analytics.PeakHoursResponse{}, session.ErrUnauthorized
	}

	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		loc = time.UTC
	}

	checkIns, err := s.repo.CheckInTimes(ctx, analytics.CheckInFilter{BranchID: &branchID})
	if err != nil {
		return analytics.PeakHoursResponse{}, fmt.Errorf("failed to load check-in times: %w", err)
	}

	return peakHours(checkIns, loc), nil
}

// DailyTrend implements analytics.Service.
func (s *AnalyticsServiceImpl) DailyTrend(ctx context.Context, days int) (analytics.DailyTrendResponse, error) {
	subjectID, _, err := callerFromContext(ctx)
	if err != nil {
		return analytics.DailyTrendResponse{}, err
	}

	if days <= 0 {
		days = s.defaultTrendDays
	}
	if days > 90 {
		days = 90
	}

	loc := s.location(ctx, subjectID)
	now := s.now()

	// Bound the query to the window instead of scanning the full log.
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))

	checkIns, err := s.repo.CheckInTimes(ctx, analytics.CheckInFilter{
		SubjectID: &subjectID,
		From:      &from,
	})
	if err != nil {
		return analytics.DailyTrendResponse{}, fmt.Errorf("failed to load check-in times: %w", err)
	}

	return analytics.DailyTrendResponse{
		Days:  days,
		Trend: dailyTrend(checkIns, loc, now, days),
	}, nil
}
