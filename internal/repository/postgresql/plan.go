package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/seatsync/library-backend-go/internal/domain/plan"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
)

type planRepository struct {
	db *database.DB
}

func NewPlanRepository(db *database.DB) plan.Repository {
	return &planRepository{db: db}
}

// FindActivePolicy implements plan.Repository. Overlapping policies are not
// expected, but the latest start wins if they occur.
func (r *planRepository) FindActivePolicy(ctx context.Context, subjectID string, at time.Time) (*plan.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, subject_id, hours_per_day,
		       shift_start, shift_end, start_date, end_date
		FROM plan_policies
		WHERE subject_id = $1
		  AND start_date <= $2
		  AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1
	`

	var p plan.Policy
	err := q.QueryRow(ctx, query, subjectID, at).Scan(
		&p.ID,
		&p.OrganizationID,
		&p.SubjectID,
		&p.HoursPerDay,
		&p.ShiftStart,
		&p.ShiftEnd,
		&p.StartDate,
		&p.EndDate,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active policy: %w", err)
	}

	return &p, nil
}
