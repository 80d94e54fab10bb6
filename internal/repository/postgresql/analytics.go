package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/seatsync/library-backend-go/internal/domain/analytics"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
)

type analyticsRepository struct {
	db *database.DB
}

func NewAnalyticsRepository(db *database.DB) analytics.Repository {
	return &analyticsRepository{db: db}
}

// Totals implements analytics.Repository. Open sessions count toward the
// session total but contribute no duration.
func (r *analyticsRepository) Totals(ctx context.Context, subjectID string, from, to time.Time) (analytics.TotalsData, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM attendance_sessions
		WHERE subject_id = $1
		  AND check_in >= $2
		  AND check_in < $3
	`

	var data analytics.TotalsData
	err := q.QueryRow(ctx, query, subjectID, from, to).Scan(&data.Sessions, &data.TotalMinutes)
	if err != nil {
		return analytics.TotalsData{}, fmt.Errorf("failed to query totals: %w", err)
	}

	return data, nil
}

// CheckInTimes implements analytics.Repository.
func (r *analyticsRepository) CheckInTimes(ctx context.Context, filter analytics.CheckInFilter) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT check_in FROM attendance_sessions WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.SubjectID != nil && *filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", argIdx)
		args = append(args, *filter.SubjectID)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND check_in >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND check_in < $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	query += " ORDER BY check_in ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-in times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan check-in time: %w", err)
		}
		times = append(times, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return times, nil
}
