package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
)

func newChatTestRouter(conversationsService *services.MockConversationsService) *mux.Router {
	return newChatTestRouterWithUsage(conversationsService, new(services.MockUsageService))
}

func newChatTestRouterWithUsage(
	conversationsService *services.MockConversationsService,
	usageService *services.MockUsageService,
) *mux.Router {
	router := mux.NewRouter()
	NewChatHTTPHandler(conversationsService, usageService).RegisterRoutes(router, testAuth)
	return router
}

func TestHandleChatMessage(t *testing.T) {
	t.Run("returns the assistant reply", func(t *testing.T) {
		conversationsService := new(services.MockConversationsService)
		conversationsService.On("ProcessMessage", mock.Anything, "u_1", "", "hello there").
			Return(&models.AssistantReply{
				ConversationID: "conv_1",
				Content:        "Hi!",
				Intent:         models.IntentKindChat,
			}, nil)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/chat",
			strings.NewReader(`{"message": "hello there"}`))
		newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
		assert.Equal(t, "conv_1", payload["conversation_id"])
		assert.Equal(t, "Hi!", payload["content"])
		assert.Equal(t, "chat", payload["intent"])
	})

	t.Run("empty message is a 400", func(t *testing.T) {
		conversationsService := new(services.MockConversationsService)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": ""}`))
		newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		conversationsService.AssertNotCalled(t, "ProcessMessage",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown conversation is a 404", func(t *testing.T) {
		conversationsService := new(services.MockConversationsService)
		conversationsService.On("ProcessMessage", mock.Anything, "u_1", "conv_missing", "hello").
			Return(nil, fmt.Errorf("%w: conversation conv_missing", core.ErrNotFound))

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/chat",
			strings.NewReader(`{"conversation_id": "conv_missing", "message": "hello"}`))
		newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestHandleChatStream(t *testing.T) {
	conversationsService := new(services.MockConversationsService)
	conversationsService.On("StreamMessage", mock.Anything, "u_1", "", "hello there", mock.Anything).
		Run(func(args mock.Arguments) {
			onDelta := args.Get(4).(func(string))
			onDelta("Hi")
			onDelta("!")
		}).
		Return(&models.AssistantReply{
			ConversationID: "conv_1",
			Content:        "Hi!",
			Intent:         models.IntentKindChat,
		}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/chat/stream",
		strings.NewReader(`{"message": "hello there"}`))
	newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	assert.Contains(t, body, "event: delta")
	assert.Contains(t, body, `data: {"text":"Hi"}`)
	assert.Contains(t, body, `data: {"text":"!"}`)
	assert.Contains(t, body, "event: done")
	assert.Contains(t, body, `"conversation_id":"conv_1"`)
}

func TestHandleListConversations(t *testing.T) {
	conversationsService := new(services.MockConversationsService)
	conversationsService.On("ListConversations", mock.Anything, "u_1").
		Return([]*models.Conversation{{ID: "conv_1", Title: "hello there"}}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "conv_1")
}

func TestHandleListMessages(t *testing.T) {
	conversationsService := new(services.MockConversationsService)
	conversationsService.On("ListMessages", mock.Anything, "u_1", "conv_1").
		Return([]*models.ConversationMessage{
			{ID: "msg_1", ConversationID: "conv_1", Role: models.MessageRoleUser, Content: "hello"},
		}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/conversations/conv_1/messages", nil)
	newChatTestRouter(conversationsService).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "msg_1")
}

func TestHandleGetUsage(t *testing.T) {
	t.Run("returns accumulated usage", func(t *testing.T) {
		usageService := new(services.MockUsageService)
		usageService.On("GetConversationUsage", mock.Anything, "conv_1").
			Return(mo.Some(&models.ConversationUsage{
				UserID:            "u_1",
				ConversationID:    "conv_1",
				TotalInputTokens:  120,
				TotalOutputTokens: 40,
				EstimatedCostUSD:  decimal.NewFromFloat(0.00096),
			}), nil)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/conversations/conv_1/usage", nil)
		newChatTestRouterWithUsage(new(services.MockConversationsService), usageService).
			ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
		assert.Equal(t, "conv_1", payload["conversation_id"])
		assert.Equal(t, float64(120), payload["total_input_tokens"])
		assert.Equal(t, float64(40), payload["total_output_tokens"])
		assert.Equal(t, "0.000960", payload["estimated_cost_usd"])
	})

	t.Run("missing usage record is a 404", func(t *testing.T) {
		usageService := new(services.MockUsageService)
		usageService.On("GetConversationUsage", mock.Anything, "conv_9").
			Return(mo.None[*models.ConversationUsage](), nil)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/conversations/conv_9/usage", nil)
		newChatTestRouterWithUsage(new(services.MockConversationsService), usageService).
			ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("another user's usage is a 404", func(t *testing.T) {
		usageService := new(services.MockUsageService)
		usageService.On("GetConversationUsage", mock.Anything, "conv_2").
			Return(mo.Some(&models.ConversationUsage{
				UserID:         "u_other",
				ConversationID: "conv_2",
			}), nil)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/conversations/conv_2/usage", nil)
		newChatTestRouterWithUsage(new(services.MockConversationsService), usageService).
			ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
