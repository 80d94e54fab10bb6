package session

import (
	"strings"

	"github.com/seatsync/library-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE ACTION DTOs
// ========================================

// GeoPoint is a caller-reported location.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScanRequest carries a raw scanned QR payload. The subject is taken from
// the caller's token; when the payload resolves to a subject instead of a
// branch (staff desk scanning a member card), the branch is the caller's
// operating branch.
type ScanRequest struct {
	Payload string `json:"payload"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Payload) {
		errs = append(errs, validator.ValidationError{
			Field:   "payload",
			Message: "payload is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Manual flow directions. Empty means toggle on current state.
const (
	ActionCheckIn  = "check-in"
	ActionCheckOut = "check-out"
)

// ManualRequest is a manual (non-proximity) check-in/out request. Location
// is required when the branch has configured coordinates.
type ManualRequest struct {
	BranchID string    `json:"branch_id"`
	Action   string    `json:"action,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

func (r *ManualRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.BranchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch_id",
			Message: "branch_id is required",
		})
	}

	if r.Action != "" && r.Action != ActionCheckIn && r.Action != ActionCheckOut {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: check-in, check-out",
		})
	}

	if r.Location != nil {
		if r.Location.Lat < -90 || r.Location.Lat > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lat",
				Message: "lat must be between -90 and 90",
			})
		}
		if r.Location.Lng < -180 || r.Location.Lng > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lng",
				Message: "lng must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ActionResponse reports the transition that happened.
type ActionResponse struct {
	Type             string   `json:"type"` // check-in | check-out
	SessionID        string   `json:"session_id"`
	BranchName       string   `json:"branch_name"`
	Timestamp        string   `json:"timestamp"`
	Status           Status   `json:"status"`
	DurationMinutes  *int     `json:"duration_minutes,omitempty"`
	Messages         []string `json:"messages,omitempty"`
	AutoClosedBranch *string  `json:"auto_closed_branch,omitempty"`
}

// SessionResponse is one session row in the read surface.
type SessionResponse struct {
	ID              string  `json:"id"`
	SubjectID       string  `json:"subject_id"`
	SubjectKind     string  `json:"subject_kind"`
	SubjectName     *string `json:"subject_name,omitempty"`
	BranchID        string  `json:"branch_id"`
	BranchName      *string `json:"branch_name,omitempty"`
	CheckIn         string  `json:"check_in"`
	CheckOut        *string `json:"check_out,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Status          Status  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Sessions   []SessionResponse `json:"sessions"`
}

// ========================================
// FILTERS
// ========================================

var validStatuses = []string{
	string(StatusPresent), string(StatusShortSession),
	string(StatusFullDay), string(StatusAutoCheckout),
}

// SessionFilter is the staff-facing listing filter.
type SessionFilter struct {
	SubjectID   *string `json:"subject_id,omitempty"`
	SubjectKind *string `json:"subject_kind,omitempty"`
	BranchID    *string `json:"branch_id,omitempty"`
	StartDate   *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status      *string `json:"status,omitempty"`
	OpenOnly    bool    `json:"open_only,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // check_in, check_out, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if f.Status != nil && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, short_session, full_day, auto_checkout",
		})
	}

	if f.SubjectKind != nil && !validator.IsInSlice(*f.SubjectKind, []string{"student", "staff"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "subject_kind",
			Message: "subject_kind must be one of: student, staff",
		})
	}

	errs = append(errs, validateDateRange(f.StartDate, f.EndDate)...)

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, []string{"check_in", "check_out", "status"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: check_in, check_out, status",
			})
		}
	} else {
		f.SortBy = "check_in"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MySessionFilter is the self-service listing filter.
type MySessionFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

func (f *MySessionFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if f.Status != nil && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, short_session, full_day, auto_checkout",
		})
	}

	errs = append(errs, validateDateRange(f.StartDate, f.EndDate)...)

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, []string{"check_in", "check_out", "status"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: check_in, check_out, status",
			})
		}
	} else {
		f.SortBy = "check_in"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePagination(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	return errs
}

func validateDateRange(startDate, endDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if startDate != nil && *startDate != "" {
		if _, valid := validator.IsValidDate(*startDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if endDate != nil && *endDate != "" {
		if _, valid := validator.IsValidDate(*endDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	return errs
}
