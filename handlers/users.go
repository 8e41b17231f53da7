package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pepperbackend/appctx"
	"pepperbackend/models/api"
)

// UsersHTTPHandler exposes the authenticated user's profile
type UsersHTTPHandler struct{}

func NewUsersHTTPHandler() *UsersHTTPHandler {
	return &UsersHTTPHandler{}
}

// RegisterRoutes attaches the user endpoints to the router
func (h *UsersHTTPHandler) RegisterRoutes(router *mux.Router, withAuth func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/users/me", withAuth(h.HandleGetProfile)).Methods(http.MethodGet)
}

func (h *UsersHTTPHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	log.Printf("👤 Get user profile request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainUserToAPIUser(user))
}
