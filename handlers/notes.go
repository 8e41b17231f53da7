package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pepperbackend/appctx"
	"pepperbackend/models/api"
	"pepperbackend/services"
)

// NotesHTTPHandler exposes note CRUD over HTTP
type NotesHTTPHandler struct {
	notesService services.NotesService
}

func NewNotesHTTPHandler(notesService services.NotesService) *NotesHTTPHandler {
	return &NotesHTTPHandler{notesService: notesService}
}

// RegisterRoutes attaches the notes endpoints to the router
func (h *NotesHTTPHandler) RegisterRoutes(router *mux.Router, withAuth func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/notes", withAuth(h.HandleListNotes)).Methods(http.MethodGet)
	router.HandleFunc("/notes", withAuth(h.HandleCreateNote)).Methods(http.MethodPost)
}

type CreateNoteRequest struct {
	Content string `json:"content"`
}

func (h *NotesHTTPHandler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📝 Create note request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		writeErrorResponse(w, "content cannot be empty", http.StatusBadRequest)
		return
	}

	note, err := h.notesService.CreateNote(r.Context(), user.ID, req.Content)
	if err != nil {
		log.Printf("❌ Failed to create note: %v", err)
		writeServiceError(w, err, "failed to create note")
		return
	}

	writeJSONResponse(w, http.StatusCreated, api.DomainNoteToAPINote(note))
}

func (h *NotesHTTPHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	log.Printf("📝 List notes request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	notes, err := h.notesService.ListNotes(r.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Failed to list notes: %v", err)
		writeServiceError(w, err, "failed to list notes")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainNotesToAPINotes(notes))
}
