package http

import (
	"net/http"

	"github.com/seatsync/library-backend-go/internal/domain/analytics"
	"github.com/seatsync/library-backend-go/internal/handler/http/response"
)

type AnalyticsHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
	Streak(w http.ResponseWriter, r *http.Request)
	PeakHours(w http.ResponseWriter, r *http.Request)
	DailyTrend(w http.ResponseWriter, r *http.Request)
}

type analyticsHandlerImpl struct {
	analyticsService analytics.Service
}

func NewAnalyticsHandler(analyticsService analytics.Service) AnalyticsHandler {
	return &analyticsHandlerImpl{
		analyticsService: analyticsService,
	}
}

// Summary implements AnalyticsHandler.
func (h *analyticsHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.Summary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Streak implements AnalyticsHandler.
func (h *analyticsHandlerImpl) Streak(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.Streak(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// PeakHours implements AnalyticsHandler.
func (h *analyticsHandlerImpl) PeakHours(w http.ResponseWriter, r *http.Request) {
	branchID := r.URL.Query().Get("branch_id")
	if branchID == "" {
		response.BadRequest(w, "Query parameter 'branch_id' is required", nil)
		return
	}

	result, err := h.analyticsService.PeakHours(r.Context(), branchID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyTrend implements AnalyticsHandler.
func (h *analyticsHandlerImpl) DailyTrend(w http.ResponseWriter, r *http.Request) {
	days := getIntQueryParam(r, "days", 0)

	result, err := h.analyticsService.DailyTrend(r.Context(), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
