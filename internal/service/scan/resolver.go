package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/domain/subject"
	"github.com/seatsync/library-backend-go/internal/pkg/scantoken"
)

// Resolution is the outcome of resolving a scanned token. Exactly one of
// Branch or Subject is set.
type Resolution struct {
	Branch  *branch.Branch
	Subject *subject.Subject
}

// Resolver maps a parsed scan token to the branch or subject it denotes.
type Resolver interface {
	Resolve(ctx context.Context, token scantoken.Token) (Resolution, error)
}

type ResolverImpl struct {
	branches branch.Repository
	subjects subject.Repository
}

func NewResolver(branches branch.Repository, subjects subject.Repository) Resolver {
	return &ResolverImpl{
		branches: branches,
		subjects: subjects,
	}
}

// Resolve implements Resolver. Structured tokens resolve by the most
// specific field present: branchId, then code, then id. Raw tokens are
// tried as a branch QR code first, then as a subject id. A token that
// matches nothing yields session.ErrNotFound.
func (r *ResolverImpl) Resolve(ctx context.Context, token scantoken.Token) (Resolution, error) {
	if token.Kind == scantoken.KindStructured {
		return r.resolveStructured(ctx, token)
	}
	return r.resolveRaw(ctx, token.Raw)
}

func (r *ResolverImpl) resolveStructured(ctx context.Context, token scantoken.Token) (Resolution, error) {
	if token.BranchID != "" {
		b, err := r.branches.GetByID(ctx, token.BranchID)
		if err != nil {
			if errors.Is(err, branch.ErrBranchNotFound) {
				return Resolution{}, session.ErrNotFound
			}
			return Resolution{}, fmt.Errorf("failed to resolve branch id: %w", err)
		}
		return Resolution{Branch: &b}, nil
	}

	if token.Code != "" {
		b, err := r.branches.GetByQRCode(ctx, token.Code)
		if err != nil {
			if errors.Is(err, branch.ErrBranchNotFound) {
				return Resolution{}, session.ErrNotFound
			}
			return Resolution{}, fmt.Errorf("failed to resolve branch code: %w", err)
		}
		return Resolution{Branch: &b}, nil
	}

	if token.ID != "" {
		s, err := r.subjects.GetByID(ctx, token.ID)
		if err != nil {
			if errors.Is(err, subject.ErrSubjectNotFound) {
				return Resolution{}, session.ErrNotFound
			}
			return Resolution{}, fmt.Errorf("failed to resolve subject id: %w", err)
		}
		return Resolution{Subject: &s}, nil
	}

	return Resolution{}, session.ErrNotFound
}

func (r *ResolverImpl) resolveRaw(ctx context.Context, raw string) (Resolution, error) {
	if raw == "" {
		return Resolution{}, session.ErrNotFound
	}

	b, err := r.branches.GetByQRCode(ctx, raw)
	if err == nil {
		return Resolution{Branch: &b}, nil
	}
	if !errors.Is(err, branch.ErrBranchNotFound) {
		return Resolution{}, fmt.Errorf("failed to resolve raw code: %w", err)
	}

	s, err := r.subjects.GetByID(ctx, raw)
	if err != nil {
		if errors.Is(err, subject.ErrSubjectNotFound) {
			return Resolution{}, session.ErrNotFound
		}
		return Resolution{}, fmt.Errorf("failed to resolve raw code as subject: %w", err)
	}

	return Resolution{Subject: &s}, nil
}
