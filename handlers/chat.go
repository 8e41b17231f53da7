package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"pepperbackend/appctx"
	"pepperbackend/models/api"
	"pepperbackend/services"
)

// ChatHTTPHandler exposes AI conversations over HTTP, including a
// server-sent-events stream variant
type ChatHTTPHandler struct {
	conversationsService services.ConversationsService
	usageService         services.UsageService
}

func NewChatHTTPHandler(
	conversationsService services.ConversationsService,
	usageService services.UsageService,
) *ChatHTTPHandler {
	return &ChatHTTPHandler{
		conversationsService: conversationsService,
		usageService:         usageService,
	}
}

// RegisterRoutes attaches the chat endpoints to the router
func (h *ChatHTTPHandler) RegisterRoutes(router *mux.Router, withAuth func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/chat", withAuth(h.HandleChatMessage)).Methods(http.MethodPost)
	router.HandleFunc("/chat/stream", withAuth(h.HandleChatStream)).Methods(http.MethodPost)
	router.HandleFunc("/conversations", withAuth(h.HandleListConversations)).Methods(http.MethodGet)
	router.HandleFunc("/conversations/{id}/messages", withAuth(h.HandleListMessages)).Methods(http.MethodGet)
	router.HandleFunc("/conversations/{id}/usage", withAuth(h.HandleGetUsage)).Methods(http.MethodGet)
}

type ChatMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

func (h *ChatHTTPHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	log.Printf("💬 Chat message request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		writeErrorResponse(w, "message cannot be empty", http.StatusBadRequest)
		return
	}

	reply, err := h.conversationsService.ProcessMessage(r.Context(), user.ID, req.ConversationID, req.Message)
	if err != nil {
		log.Printf("❌ Failed to process chat message: %v", err)
		writeServiceError(w, err, "failed to process message")
		return
	}

	writeJSONResponse(w, http.StatusOK, reply)
}

func (h *ChatHTTPHandler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	log.Printf("💬 Chat stream request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		writeErrorResponse(w, "message cannot be empty", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	reply, err := h.conversationsService.StreamMessage(r.Context(), user.ID, req.ConversationID, req.Message,
		func(delta string) {
			writeSSEEvent(w, "delta", map[string]string{"text": delta})
			flusher.Flush()
		})
	if err != nil {
		log.Printf("❌ Failed to stream chat message: %v", err)
		writeSSEEvent(w, "error", map[string]string{"error": "failed to process message"})
		flusher.Flush()
		return
	}

	writeSSEEvent(w, "done", reply)
	flusher.Flush()
}

// writeSSEEvent frames one server-sent event with a JSON payload
func writeSSEEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal SSE payload: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}

func (h *ChatHTTPHandler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	log.Printf("💬 List conversations request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conversations, err := h.conversationsService.ListConversations(r.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Failed to list conversations: %v", err)
		writeServiceError(w, err, "failed to list conversations")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainConversationsToAPIConversations(conversations))
}

func (h *ChatHTTPHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	log.Printf("💬 List messages request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conversationID := mux.Vars(r)["id"]

	messages, err := h.conversationsService.ListMessages(r.Context(), user.ID, conversationID)
	if err != nil {
		log.Printf("❌ Failed to list messages: %v", err)
		writeServiceError(w, err, "failed to list messages")
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainMessagesToAPIMessages(messages))
}

func (h *ChatHTTPHandler) HandleGetUsage(w http.ResponseWriter, r *http.Request) {
	log.Printf("💬 Conversation usage request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conversationID := mux.Vars(r)["id"]

	maybeUsage, err := h.usageService.GetConversationUsage(r.Context(), conversationID)
	if err != nil {
		log.Printf("❌ Failed to get conversation usage: %v", err)
		writeServiceError(w, err, "failed to get conversation usage")
		return
	}

	usage, ok := maybeUsage.Get()
	if !ok || usage.UserID != user.ID {
		writeErrorResponse(w, "conversation usage not found", http.StatusNotFound)
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DomainUsageToAPIUsage(usage))
}
