package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/seatsync/library-backend-go/internal/domain/subject"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
)

type subjectRepository struct {
	db *database.DB
}

func NewSubjectRepository(db *database.DB) subject.Repository {
	return &subjectRepository{db: db}
}

// GetByID implements subject.Repository.
func (r *subjectRepository) GetByID(ctx context.Context, id string) (subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, branch_id, kind, full_name, active
		FROM subjects
		WHERE id = $1
	`

	var s subject.Subject
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.OrganizationID,
		&s.BranchID,
		&s.Kind,
		&s.FullName,
		&s.Active,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subject.Subject{}, subject.ErrSubjectNotFound
		}
		return subject.Subject{}, fmt.Errorf("failed to get subject: %w", err)
	}

	return s, nil
}
