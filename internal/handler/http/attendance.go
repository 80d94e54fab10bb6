package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/handler/http/response"
	"github.com/seatsync/library-backend-go/internal/pkg/jwt"
	"github.com/seatsync/library-backend-go/internal/pkg/sse"
)

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	Manual(w http.ResponseWriter, r *http.Request)
	GetMySessions(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	sessionService session.Service
	jwtService     jwt.Service
	hub            *sse.Hub
}

func NewAttendanceHandler(sessionService session.Service, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		sessionService: sessionService,
		jwtService:     jwtService,
		hub:            hub,
	}
}

// getSubjectIDFromContext extracts subject_id from JWT context
func getSubjectIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if subjectID, ok := claims["subject_id"].(string); ok {
		return subjectID
	}
	return ""
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// strQueryParam returns a pointer to the query value, or nil when absent.
func strQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// Scan implements AttendanceHandler.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	var req session.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode scan request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.sessionService.Scan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Check in successful"
	if result.Type == session.ActionCheckOut {
		message = "Check out successful"
	}
	response.SuccessWithMessage(w, message, result)
}

// Manual implements AttendanceHandler.
func (h *attendanceHandlerImpl) Manual(w http.ResponseWriter, r *http.Request) {
	var req session.ManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode manual attendance request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.sessionService.Manual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Check in successful"
	if result.Type == session.ActionCheckOut {
		message = "Check out successful"
	}
	response.SuccessWithMessage(w, message, result)
}

// GetMySessions implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMySessions(w http.ResponseWriter, r *http.Request) {
	filter := session.MySessionFilter{
		StartDate: strQueryParam(r, "start_date"),
		EndDate:   strQueryParam(r, "end_date"),
		Status:    strQueryParam(r, "status"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	result, err := h.sessionService.GetMySessions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := session.SessionFilter{
		SubjectID:   strQueryParam(r, "subject_id"),
		SubjectKind: strQueryParam(r, "subject_kind"),
		BranchID:    strQueryParam(r, "branch_id"),
		StartDate:   strQueryParam(r, "start_date"),
		EndDate:     strQueryParam(r, "end_date"),
		Status:      strQueryParam(r, "status"),
		OpenOnly:    r.URL.Query().Get("open_only") == "true",
		Page:        getIntQueryParam(r, "page", 1),
		Limit:       getIntQueryParam(r, "limit", 20),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
	}

	result, err := h.sessionService.ListSessions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type sseTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetSSEToken implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	subjectID := getSubjectIDFromContext(r)
	if subjectID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(subjectID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, sseTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection for live attendance updates.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Token arrives as a query parameter; EventSource cannot set headers.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	subjectID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(subjectID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subject_id\":\"%s\"}\n\n", subjectID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
