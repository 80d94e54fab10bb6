package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
)

type sessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) session.Repository {
	return &sessionRepository{db: db}
}

const sessionColumns = `
	id, subject_id, subject_kind, organization_id, branch_id,
	check_in, check_out, duration_minutes, status,
	created_at, updated_at
`

func scanSession(row pgx.Row) (session.Session, error) {
	var s session.Session
	err := row.Scan(
		&s.ID, &s.SubjectID, &s.SubjectKind, &s.OrganizationID, &s.BranchID,
		&s.CheckIn, &s.CheckOut, &s.DurationMinutes, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// FindOpenSession implements session.Repository.
func (r *sessionRepository) FindOpenSession(ctx context.Context, subjectID string) (*session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE subject_id = $1
		  AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	return &s, nil
}

// FindOpenSessionAtBranch implements session.Repository.
func (r *sessionRepository) FindOpenSessionAtBranch(ctx context.Context, subjectID, branchID string) (*session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE subject_id = $1
		  AND branch_id = $2
		  AND check_out IS NULL
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, subjectID, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session at branch: %w", err)
	}

	return &s, nil
}

// Create implements session.Repository. The partial unique index
// attendance_sessions_one_open_per_subject rejects a second open session
// for the same subject; that violation surfaces as session.ErrConflict.
func (r *sessionRepository) Create(ctx context.Context, ns session.NewSession) (session.Session, error) {
	q := GetQuerier(ctx, r.db)

	// UUIDv7 ids keep the primary key roughly insertion-ordered.
	id, err := uuid.NewV7()
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	query := `
		INSERT INTO attendance_sessions (
			id, subject_id, subject_kind, organization_id, branch_id,
			check_in, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query,
		id.String(),
		ns.SubjectID,
		ns.SubjectKind,
		ns.OrganizationID,
		ns.BranchID,
		ns.CheckIn,
		session.StatusPresent,
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return session.Session{}, fmt.Errorf("%w: open session already exists for subject %s", session.ErrConflict, ns.SubjectID)
		}
		return session.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return s, nil
}

// Close implements session.Repository. The check_out IS NULL predicate
// makes the close single-shot: a session already closed is not touched.
func (r *sessionRepository) Close(ctx context.Context, id string, checkOut time.Time, durationMinutes int, status session.Status) (session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET check_out = $2,
		    duration_minutes = $3,
		    status = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND check_out IS NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query, id, checkOut, durationMinutes, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to close session: %w", err)
	}

	return s, nil
}

// FindStaleOpen implements session.Repository.
func (r *sessionRepository) FindStaleOpen(ctx context.Context, before time.Time) ([]session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE check_out IS NULL
		  AND check_in < $1
		ORDER BY check_in ASC
	`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}

// List implements session.Repository.
func (r *sessionRepository) List(ctx context.Context, filter session.SessionFilter, organizationID string) ([]session.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "s.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.SubjectID != nil && *filter.SubjectID != "" {
		baseWhere += fmt.Sprintf(" AND s.subject_id = $%d", argIdx)
		args = append(args, *filter.SubjectID)
		argIdx++
	}
	if filter.SubjectKind != nil && *filter.SubjectKind != "" {
		baseWhere += fmt.Sprintf(" AND s.subject_kind = $%d", argIdx)
		args = append(args, *filter.SubjectKind)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		baseWhere += fmt.Sprintf(" AND s.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.OpenOnly {
		baseWhere += " AND s.check_out IS NULL"
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND s.check_in::date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND s.check_in::date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_sessions s WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	orderByField := "s.check_in"
	switch filter.SortBy {
	case "check_out":
		orderByField = "s.check_out"
	case "status":
		orderByField = "s.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			s.id, s.subject_id, s.subject_kind, s.organization_id, s.branch_id,
			s.check_in, s.check_out, s.duration_minutes, s.status,
			s.created_at, s.updated_at,
			sub.full_name AS subject_name,
			b.name AS branch_name
		FROM attendance_sessions s
		LEFT JOIN subjects sub ON sub.id = s.subject_id
		LEFT JOIN branches b ON b.id = s.branch_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var s session.Session
		err := rows.Scan(
			&s.ID, &s.SubjectID, &s.SubjectKind, &s.OrganizationID, &s.BranchID,
			&s.CheckIn, &s.CheckOut, &s.DurationMinutes, &s.Status,
			&s.CreatedAt, &s.UpdatedAt,
			&s.SubjectName, &s.BranchName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, total, nil
}

// ListForSubject implements session.Repository.
func (r *sessionRepository) ListForSubject(ctx context.Context, subjectID string, filter session.MySessionFilter, organizationID string) ([]session.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "s.subject_id = $1 AND s.organization_id = $2"
	args := []interface{}{subjectID, organizationID}
	argIdx := 3

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND s.check_in::date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND s.check_in::date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_sessions s WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	orderByField := "s.check_in"
	switch filter.SortBy {
	case "check_out":
		orderByField = "s.check_out"
	case "status":
		orderByField = "s.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			s.id, s.subject_id, s.subject_kind, s.organization_id, s.branch_id,
			s.check_in, s.check_out, s.duration_minutes, s.status,
			s.created_at, s.updated_at,
			b.name AS branch_name
		FROM attendance_sessions s
		LEFT JOIN branches b ON b.id = s.branch_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var s session.Session
		err := rows.Scan(
			&s.ID, &s.SubjectID, &s.SubjectKind, &s.OrganizationID, &s.BranchID,
			&s.CheckIn, &s.CheckOut, &s.DurationMinutes, &s.Status,
			&s.CreatedAt, &s.UpdatedAt,
			&s.BranchName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, total, nil
}
