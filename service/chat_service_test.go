package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aurora-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationStore struct {
	conversations map[uuid.UUID]*models.Conversation

	created  []*models.Conversation
	appended []models.Message
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: make(map[uuid.UUID]*models.Conversation)}
}

func (f *fakeConversationStore) Create(ctx context.Context, conv *models.Conversation) error {
	conv.ID = uuid.New()
	f.conversations[conv.ID] = conv
	f.created = append(f.created, conv)
	return nil
}

func (f *fakeConversationStore) AppendMessages(ctx context.Context, convID, userID uuid.UUID, messages ...models.Message) (time.Time, error) {
	conv, ok := f.conversations[convID]
	if !ok || conv.UserID != userID {
		return time.Time{}, models.ErrConversationNotFound
	}
	conv.Messages = append(conv.Messages, messages...)
	conv.LastActivity = time.Now()
	f.appended = append(f.appended, messages...)
	return conv.LastActivity, nil
}

func (f *fakeConversationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	var out []models.ConversationSummary
	for _, conv := range f.conversations {
		if conv.UserID == userID {
			out = append(out, models.ConversationSummary{ID: conv.ID, Title: conv.Title, LastActivity: conv.LastActivity})
		}
	}
	return out, nil
}

func (f *fakeConversationStore) GetByIDAndUser(ctx context.Context, convID, userID uuid.UUID) (*models.Conversation, error) {
	conv, ok := f.conversations[convID]
	if !ok || conv.UserID != userID {
		return nil, models.ErrConversationNotFound
	}
	return conv, nil
}

func (f *fakeConversationStore) DeleteByIDAndUser(ctx context.Context, convID, userID uuid.UUID) error {
	conv, ok := f.conversations[convID]
	if !ok || conv.UserID != userID {
		return models.ErrConversationNotFound
	}
	delete(f.conversations, convID)
	return nil
}

type fakeCompleter struct {
	reply string
	err   error

	gotPrompt  string
	gotHistory []models.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, history []models.Message) (string, error) {
	f.gotPrompt = prompt
	f.gotHistory = history
	return f.reply, f.err
}

func newChatService(store ConversationStore, completer Completer) *ChatService {
	return NewChatService(
		ChatWithConversationStore(store),
		ChatWithCompleter(completer),
	)
}

func TestChatHandleNewConversation(t *testing.T) {
	store := newFakeConversationStore()
	svc := newChatService(store, &fakeCompleter{reply: "The answer."})
	userID := uuid.New()

	result, err := svc.Handle(context.Background(), ChatRequest{UserID: userID, Prompt: "What is Go?"})
	require.NoError(t, err)

	require.NotNil(t, result.NewChatID)
	assert.Nil(t, result.UpdatedChatID)
	assert.Equal(t, "The answer.", result.Answer)
	assert.Equal(t, "What is Go?", result.Title)

	require.Len(t, store.created, 1)
	conv := store.created[0]
	assert.Equal(t, userID, conv.UserID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "What is Go?", conv.Messages[0].Content)
	assert.Equal(t, models.RoleBot, conv.Messages[1].Role)
	assert.Equal(t, "The answer.", conv.Messages[1].Content)
}

func TestChatHandleNewConversationTitleTruncated(t *testing.T) {
	store := newFakeConversationStore()
	svc := newChatService(store, &fakeCompleter{reply: "Sure."})

	prompt := "Please explain in great detail how garbage collection works in Go"
	result, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: prompt})
	require.NoError(t, err)

	assert.Equal(t, "Please explain in great detail how garbage collect...", result.Title)
}

func TestChatHandleExistingConversationAppendsPair(t *testing.T) {
	store := newFakeConversationStore()
	completer := &fakeCompleter{reply: "Again."}
	svc := newChatService(store, completer)
	userID := uuid.New()

	first, err := svc.Handle(context.Background(), ChatRequest{UserID: userID, Prompt: "first"})
	require.NoError(t, err)
	chatID := *first.NewChatID

	result, err := svc.Handle(context.Background(), ChatRequest{UserID: userID, Prompt: "second", ChatID: &chatID})
	require.NoError(t, err)

	require.NotNil(t, result.UpdatedChatID)
	assert.Equal(t, chatID, *result.UpdatedChatID)
	assert.Nil(t, result.NewChatID)
	assert.False(t, result.LastActivity.IsZero())

	// exactly one user/bot pair appended, on top of the original pair
	require.Len(t, store.appended, 2)
	assert.Equal(t, models.RoleUser, store.appended[0].Role)
	assert.Equal(t, models.RoleBot, store.appended[1].Role)
	assert.Len(t, store.conversations[chatID].Messages, 4)

	// prior history was handed to the completer
	assert.Len(t, completer.gotHistory, 2)
}

func TestChatHandleEmptyPrompt(t *testing.T) {
	svc := newChatService(newFakeConversationStore(), &fakeCompleter{reply: "x"})

	_, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestChatHandleUnknownChatID(t *testing.T) {
	svc := newChatService(newFakeConversationStore(), &fakeCompleter{reply: "x"})
	chatID := uuid.New()

	_, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "hello", ChatID: &chatID})
	assert.ErrorIs(t, err, models.ErrConversationNotFound)
}

func TestChatHandleOtherUsersChatLooksMissing(t *testing.T) {
	store := newFakeConversationStore()
	svc := newChatService(store, &fakeCompleter{reply: "x"})

	owner := uuid.New()
	first, err := svc.Handle(context.Background(), ChatRequest{UserID: owner, Prompt: "mine"})
	require.NoError(t, err)

	_, err = svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "theirs", ChatID: first.NewChatID})
	assert.ErrorIs(t, err, models.ErrConversationNotFound)
}

func TestChatHandleEmptyUpstreamReply(t *testing.T) {
	store := newFakeConversationStore()
	svc := newChatService(store, &fakeCompleter{reply: "   "})

	_, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "hello"})
	assert.ErrorIs(t, err, ErrInvalidBotResponse)
	assert.Empty(t, store.created, "nothing should be persisted on upstream failure")
}

func TestChatHandleUpstreamDeadline(t *testing.T) {
	svc := newChatService(newFakeConversationStore(), &fakeCompleter{err: context.DeadlineExceeded})

	_, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "hello"})
	assert.ErrorIs(t, err, ErrCompletionTimeout)
}

func TestChatHandleUpstreamErrorPassesThrough(t *testing.T) {
	upstream := errors.New("rate limited")
	svc := newChatService(newFakeConversationStore(), &fakeCompleter{err: upstream})

	_, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "hello"})
	assert.ErrorIs(t, err, upstream)
}

func TestChatHandleFormatsReply(t *testing.T) {
	svc := newChatService(newFakeConversationStore(), &fakeCompleter{reply: "**One**. Two. Three."})

	result, err := svc.Handle(context.Background(), ChatRequest{UserID: uuid.New(), Prompt: "list them"})
	require.NoError(t, err)
	assert.Equal(t, "1. One.\n2. Two.\n3. Three.", result.Answer)
}

func TestDeleteConversation(t *testing.T) {
	store := newFakeConversationStore()
	svc := newChatService(store, &fakeCompleter{reply: "x"})
	userID := uuid.New()

	first, err := svc.Handle(context.Background(), ChatRequest{UserID: userID, Prompt: "hello"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), *first.NewChatID, userID))
	assert.ErrorIs(t, svc.DeleteConversation(context.Background(), *first.NewChatID, userID), models.ErrConversationNotFound)
}
