package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aurora-backend/models"
	"aurora-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConversationStore struct {
	conv *models.Conversation
}

func (s *stubConversationStore) Create(ctx context.Context, conv *models.Conversation) error {
	conv.ID = uuid.New()
	s.conv = conv
	return nil
}

func (s *stubConversationStore) AppendMessages(ctx context.Context, convID, userID uuid.UUID, messages ...models.Message) (time.Time, error) {
	if s.conv == nil || s.conv.ID != convID || s.conv.UserID != userID {
		return time.Time{}, models.ErrConversationNotFound
	}
	s.conv.Messages = append(s.conv.Messages, messages...)
	s.conv.LastActivity = time.Now()
	return s.conv.LastActivity, nil
}

func (s *stubConversationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	if s.conv == nil || s.conv.UserID != userID {
		return nil, nil
	}
	return []models.ConversationSummary{{ID: s.conv.ID, Title: s.conv.Title, LastActivity: s.conv.LastActivity}}, nil
}

func (s *stubConversationStore) GetByIDAndUser(ctx context.Context, convID, userID uuid.UUID) (*models.Conversation, error) {
	if s.conv == nil || s.conv.ID != convID || s.conv.UserID != userID {
		return nil, models.ErrConversationNotFound
	}
	return s.conv, nil
}

func (s *stubConversationStore) DeleteByIDAndUser(ctx context.Context, convID, userID uuid.UUID) error {
	if s.conv == nil || s.conv.ID != convID || s.conv.UserID != userID {
		return models.ErrConversationNotFound
	}
	s.conv = nil
	return nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, history []models.Message) (string, error) {
	return s.reply, s.err
}

func chatTestRouter(user *models.User, store service.ConversationStore, completer service.Completer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	chatService := service.NewChatService(
		service.ChatWithConversationStore(store),
		service.ChatWithCompleter(completer),
	)
	handler := NewChatHandler(chatService)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userContextKey, user)
	})
	r.POST("/api/chatbot", handler.Chat)
	r.GET("/api/chats", handler.ListChats)
	r.GET("/api/chats/:id", handler.GetChat)
	r.DELETE("/api/chats/:id", handler.DeleteChat)
	return r
}

func doJSONRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestChatNewConversationResponse(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "alice@example.com"}
	store := &stubConversationStore{}
	r := chatTestRouter(user, store, &stubCompleter{reply: "The answer."})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot", `{"prompt":"What is Go?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "The answer.", data["answer"])
	assert.Equal(t, "What is Go?", data["title"])
	assert.NotEmpty(t, data["newChatId"])
	assert.NotContains(t, data, "updatedChat")
}

func TestChatExistingConversationResponse(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "alice@example.com"}
	store := &stubConversationStore{conv: &models.Conversation{
		ID:     uuid.New(),
		UserID: user.ID,
		Title:  "Earlier chat",
	}}
	r := chatTestRouter(user, store, &stubCompleter{reply: "Again."})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot",
		`{"prompt":"more","chatId":"`+store.conv.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Again.", data["answer"])
	assert.NotContains(t, data, "newChatId")

	updated := data["updatedChat"].(map[string]any)
	assert.NotEmpty(t, updated["id"])
	assert.NotEmpty(t, updated["lastUpdate"])
}

func TestChatMalformedChatID(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{reply: "x"})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot", `{"prompt":"hi","chatId":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CHAT_ID", errorCode(t, body))
}

func TestChatEmptyPrompt(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{reply: "x"})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot", `{"prompt":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_PROMPT", errorCode(t, body))
}

func TestChatUnknownConversation(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{reply: "x"})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot",
		`{"prompt":"hi","chatId":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CHAT_NOT_FOUND", errorCode(t, body))
}

func TestChatEmptyUpstreamReplyIsBadGateway(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{reply: "  "})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BAD_UPSTREAM", errorCode(t, body))
}

func TestChatUpstreamDeadlineIsTimeout(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{err: context.DeadlineExceeded})

	w, body := doJSONRequest(t, r, http.MethodPost, "/api/chatbot", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Equal(t, "UPSTREAM_TIMEOUT", errorCode(t, body))
}

func TestGetChatReturnsFullHistory(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	store := &stubConversationStore{conv: &models.Conversation{
		ID:     uuid.New(),
		UserID: user.ID,
		Title:  "History",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleBot, Content: "hello"},
		},
	}}
	r := chatTestRouter(user, store, &stubCompleter{reply: "x"})

	w, body := doJSONRequest(t, r, http.MethodGet, "/api/chats/"+store.conv.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "History", data["title"])
	assert.Len(t, data["messages"], 2)
}

func TestDeleteChatNotFound(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := chatTestRouter(user, &stubConversationStore{}, &stubCompleter{reply: "x"})

	w, body := doJSONRequest(t, r, http.MethodDelete, "/api/chats/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CHAT_NOT_FOUND", errorCode(t, body))
}
