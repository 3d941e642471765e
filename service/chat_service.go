package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"aurora-backend/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyPrompt        = errors.New("prompt is required and must be a non-empty string")
	ErrInvalidBotResponse = errors.New("invalid chatbot response")
	ErrCompletionTimeout  = errors.New("chatbot request timed out")
)

// ConversationStore is the persistence surface the chat service needs.
// Implemented by repository.ConversationRepository.
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	AppendMessages(ctx context.Context, convID, userID uuid.UUID, messages ...models.Message) (time.Time, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error)
	GetByIDAndUser(ctx context.Context, convID, userID uuid.UUID) (*models.Conversation, error)
	DeleteByIDAndUser(ctx context.Context, convID, userID uuid.UUID) error
}

// ChatService orchestrates a chatbot exchange: it resolves the target
// conversation, invokes the completion service, and persists the resulting
// message pair.
type ChatService struct {
	conversations ConversationStore
	completer     Completer
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithConversationStore sets the conversation store
func ChatWithConversationStore(store ConversationStore) ChatServiceOption {
	return func(s *ChatService) {
		s.conversations = store
	}
}

// ChatWithCompleter sets the completion client
func ChatWithCompleter(completer Completer) ChatServiceOption {
	return func(s *ChatService) {
		s.completer = completer
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatRequest represents one user prompt aimed at a new or existing chat
type ChatRequest struct {
	UserID uuid.UUID
	Prompt string
	// ChatID targets an existing conversation. Nil means start a new one.
	ChatID *uuid.UUID
}

// ChatResult represents the outcome of handling a prompt
type ChatResult struct {
	Answer string

	// Set when a new conversation was created
	NewChatID *uuid.UUID
	Title     string

	// Set when an existing conversation was updated
	UpdatedChatID *uuid.UUID
	LastActivity  time.Time
}

// Handle processes a prompt. With a chat ID it appends to that conversation,
// which must exist and belong to the user; a miss is an error, never a
// silent new chat. Without one it creates a conversation titled from the
// prompt. Both persisted messages land in a single atomic append.
func (s *ChatService) Handle(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}
	if s.completer == nil {
		return nil, errors.New("completer not set")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	userMessage := models.Message{
		Role:      models.RoleUser,
		Content:   prompt,
		Timestamp: time.Now(),
	}

	if req.ChatID != nil {
		conv, err := s.conversations.GetByIDAndUser(ctx, *req.ChatID, req.UserID)
		if err != nil {
			return nil, err
		}

		answer, err := s.askBot(ctx, prompt, conv.Messages)
		if err != nil {
			return nil, err
		}

		botMessage := models.Message{
			Role:      models.RoleBot,
			Content:   answer,
			Timestamp: time.Now(),
		}
		lastActivity, err := s.conversations.AppendMessages(ctx, conv.ID, req.UserID, userMessage, botMessage)
		if err != nil {
			return nil, err
		}

		return &ChatResult{
			Answer:        answer,
			UpdatedChatID: &conv.ID,
			LastActivity:  lastActivity,
		}, nil
	}

	title := GenerateTitleFromPrompt(prompt)

	answer, err := s.askBot(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	botMessage := models.Message{
		Role:      models.RoleBot,
		Content:   answer,
		Timestamp: time.Now(),
	}
	conv := &models.Conversation{
		UserID:       req.UserID,
		Title:        title,
		Messages:     []models.Message{userMessage, botMessage},
		LastActivity: time.Now(),
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	return &ChatResult{
		Answer:    answer,
		NewChatID: &conv.ID,
		Title:     conv.Title,
	}, nil
}

// askBot invokes the completion service and reformats its reply. An empty or
// unusable upstream payload is a gateway error, a deadline hit maps to the
// timeout sentinel.
func (s *ChatService) askBot(ctx context.Context, prompt string, history []models.Message) (string, error) {
	raw, err := s.completer.Complete(ctx, prompt, history)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrCompletionTimeout
		}
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidBotResponse
	}
	return FormatBotResponse(raw), nil
}

// ListConversations returns the user's chats, most recently active first
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}
	return s.conversations.ListByUser(ctx, userID)
}

// GetConversation returns one of the user's chats with its full history
func (s *ChatService) GetConversation(ctx context.Context, convID, userID uuid.UUID) (*models.Conversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}
	return s.conversations.GetByIDAndUser(ctx, convID, userID)
}

// DeleteConversation deletes one of the user's chats
func (s *ChatService) DeleteConversation(ctx context.Context, convID, userID uuid.UUID) error {
	if s.conversations == nil {
		return errors.New("conversation store not set")
	}
	return s.conversations.DeleteByIDAndUser(ctx, convID, userID)
}
