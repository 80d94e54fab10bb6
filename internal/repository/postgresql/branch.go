package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
)

type branchRepository struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.Repository {
	return &branchRepository{db: db}
}

const branchColumns = `
	id, organization_id, name, address, qr_code, latitude, longitude, timezone
`

func scanBranch(row pgx.Row) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(
		&b.ID, &b.OrganizationID, &b.Name, &b.Address,
		&b.QRCode, &b.Latitude, &b.Longitude, &b.Timezone,
	)
	return b, err
}

// GetByID implements branch.Repository.
func (r *branchRepository) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + branchColumns + `
		FROM branches
		WHERE id = $1
	`

	b, err := scanBranch(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}

	return b, nil
}

// GetByQRCode implements branch.Repository.
func (r *branchRepository) GetByQRCode(ctx context.Context, qrCode string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + branchColumns + `
		FROM branches
		WHERE qr_code = $1
	`

	b, err := scanBranch(q.QueryRow(ctx, query, qrCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch by qr code: %w", err)
	}

	return b, nil
}

// TimezoneBySubjectID implements branch.Repository.
func (r *branchRepository) TimezoneBySubjectID(ctx context.Context, subjectID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.timezone
		FROM subjects s
		JOIN branches b ON b.id = s.branch_id
		WHERE s.id = $1
	`

	var timezone string
	err := q.QueryRow(ctx, query, subjectID).Scan(&timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", branch.ErrBranchNotFound
		}
		return "", fmt.Errorf("failed to get timezone for subject: %w", err)
	}

	return timezone, nil
}

// ListByOrganization implements branch.Repository.
func (r *branchRepository) ListByOrganization(ctx context.Context, organizationID string) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + branchColumns + `
		FROM branches
		WHERE organization_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return branches, nil
}
