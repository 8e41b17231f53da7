package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pepperbackend/appctx"
	"pepperbackend/models"
	"pepperbackend/models/api"
	"pepperbackend/services"
)

// OAuthHTTPHandler exposes the device authorization flow over HTTP
type OAuthHTTPHandler struct {
	oauthService services.OAuthService
}

func NewOAuthHTTPHandler(oauthService services.OAuthService) *OAuthHTTPHandler {
	return &OAuthHTTPHandler{oauthService: oauthService}
}

// RegisterRoutes attaches the oauth endpoints to the router
func (h *OAuthHTTPHandler) RegisterRoutes(router *mux.Router, withAuth func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/oauth/connected", withAuth(h.HandleConnectedProviders)).Methods(http.MethodGet)
	router.HandleFunc("/oauth/{provider}/start", withAuth(h.HandleStartDeviceFlow)).Methods(http.MethodPost)
	router.HandleFunc("/oauth/{provider}/poll", withAuth(h.HandlePollDeviceFlow)).Methods(http.MethodPost)
	router.HandleFunc("/oauth/{provider}", withAuth(h.HandleDisconnect)).Methods(http.MethodDelete)
}

func (h *OAuthHTTPHandler) HandleStartDeviceFlow(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Start device flow request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	provider := models.CalendarProvider(mux.Vars(r)["provider"])

	session, err := h.oauthService.StartDeviceFlow(r.Context(), user.ID, provider)
	if err != nil {
		log.Printf("❌ Failed to start device flow: %v", err)
		writeServiceError(w, err, "failed to start device flow")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainSessionToAPIDeviceFlowStart(session))
}

func (h *OAuthHTTPHandler) HandlePollDeviceFlow(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Poll device flow request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	provider := models.CalendarProvider(mux.Vars(r)["provider"])

	result, err := h.oauthService.PollDeviceFlow(r.Context(), user.ID, provider)
	if err != nil {
		log.Printf("❌ Failed to poll device flow: %v", err)
		writeServiceError(w, err, "failed to poll device flow")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainPollResultToAPIPollResult(result))
}

func (h *OAuthHTTPHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Disconnect provider request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	provider := models.CalendarProvider(mux.Vars(r)["provider"])

	if err := h.oauthService.Disconnect(r.Context(), user.ID, provider); err != nil {
		log.Printf("❌ Failed to disconnect provider: %v", err)
		writeServiceError(w, err, "failed to disconnect provider")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OAuthHTTPHandler) HandleConnectedProviders(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Connected providers request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	providers, err := h.oauthService.ConnectedProviders(r.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Failed to list connected providers: %v", err)
		writeServiceError(w, err, "failed to list connected providers")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.ConnectedProviders{Providers: providers})
}
