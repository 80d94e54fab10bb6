package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/handler/http/response"
)

type BranchHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

// The branch directory is a plain read with no business rules, so the
// handler talks to the repository directly.
type branchHandlerImpl struct {
	branches branch.Repository
}

func NewBranchHandler(branches branch.Repository) BranchHandler {
	return &branchHandlerImpl{branches: branches}
}

// List implements BranchHandler.
func (h *branchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	_, claims, _ := jwtauth.FromContext(r.Context())
	organizationID, ok := claims["organization_id"].(string)
	if !ok || organizationID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	branches, err := h.branches.ListByOrganization(r.Context(), organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]branch.BranchResponse, 0, len(branches))
	for _, b := range branches {
		result = append(result, b.ToResponse())
	}

	response.Success(w, result)
}
