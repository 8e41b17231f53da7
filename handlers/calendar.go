package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pepperbackend/appctx"
	"pepperbackend/models"
	"pepperbackend/services"
)

// CalendarHTTPHandler exposes calendar operations across connected providers
type CalendarHTTPHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHTTPHandler(calendarService services.CalendarService) *CalendarHTTPHandler {
	return &CalendarHTTPHandler{calendarService: calendarService}
}

// RegisterRoutes attaches the calendar endpoints to the router
func (h *CalendarHTTPHandler) RegisterRoutes(router *mux.Router, withAuth func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/calendar/events", withAuth(h.HandleListEvents)).Methods(http.MethodGet)
	router.HandleFunc("/calendar/events", withAuth(h.HandleCreateEvent)).Methods(http.MethodPost)
}

type CreateEventRequest struct {
	Provider    models.CalendarProvider `json:"provider"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Location    string                  `json:"location"`
	StartTime   time.Time               `json:"start_time"`
	EndTime     time.Time               `json:"end_time"`
}

func (h *CalendarHTTPHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	log.Printf("📅 List calendar events request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	provider := models.CalendarProvider(r.URL.Query().Get("provider"))

	days := 0
	if rawDays := r.URL.Query().Get("days"); rawDays != "" {
		parsed, err := strconv.Atoi(rawDays)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	events, err := h.calendarService.ListUpcomingEvents(r.Context(), user.ID, provider, days)
	if err != nil {
		log.Printf("❌ Failed to list calendar events: %v", err)
		writeServiceError(w, err, "failed to list calendar events")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"events": events})
}

func (h *CalendarHTTPHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📅 Create calendar event request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		writeErrorResponse(w, "title cannot be empty", http.StatusBadRequest)
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeErrorResponse(w, "start_time and end_time are required", http.StatusBadRequest)
		return
	}

	event := &models.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}

	created, err := h.calendarService.CreateEvent(r.Context(), user.ID, req.Provider, event)
	if err != nil {
		log.Printf("❌ Failed to create calendar event: %v", err)
		writeServiceError(w, err, "failed to create calendar event")
		return
	}

	writeJSONResponse(w, http.StatusCreated, created)
}
