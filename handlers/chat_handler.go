package handlers

import (
	"errors"
	"log"
	"net/http"

	"aurora-backend/models"
	"aurora-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for the chatbot and conversation history
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for a chatbot exchange. History is
// accepted for compatibility with older clients but the server reloads it
// from storage.
type ChatRequest struct {
	Prompt  string           `json:"prompt"`
	ChatID  string           `json:"chatId"`
	History []models.Message `json:"history"`
}

// Chat handles POST /api/chatbot
func (h *ChatHandler) Chat(c *gin.Context) {
	user := CurrentUser(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := service.ChatRequest{
		UserID: user.ID,
		Prompt: req.Prompt,
	}
	if req.ChatID != "" {
		chatID, err := uuid.Parse(req.ChatID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_CHAT_ID", "Invalid chat ID format")
			return
		}
		serviceReq.ChatID = &chatID
	}

	result, err := h.chatService.Handle(c.Request.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPrompt):
			respondError(c, http.StatusBadRequest, "EMPTY_PROMPT", "Prompt is required and must be a non-empty string")
		case errors.Is(err, models.ErrConversationNotFound):
			respondError(c, http.StatusNotFound, "CHAT_NOT_FOUND", "Chat not found or you don't have permission")
		case errors.Is(err, service.ErrInvalidBotResponse):
			respondError(c, http.StatusBadGateway, "BAD_UPSTREAM", "Received an invalid response from the chatbot service")
		case errors.Is(err, service.ErrCompletionTimeout):
			respondError(c, http.StatusRequestTimeout, "UPSTREAM_TIMEOUT", "The request to the chatbot timed out")
		default:
			log.Printf("Chat processing error for user %s: %v", user.ID, err)
			respondError(c, http.StatusInternalServerError, "CHAT_FAILED", "Failed to process chat request")
		}
		return
	}

	data := gin.H{"answer": result.Answer}
	if result.NewChatID != nil {
		data["newChatId"] = result.NewChatID
		data["title"] = result.Title
	} else {
		data["updatedChat"] = gin.H{
			"id":         result.UpdatedChatID,
			"lastUpdate": result.LastActivity,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// ListChats handles GET /api/chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	user := CurrentUser(c)

	summaries, err := h.chatService.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to fetch chat list for user %s: %v", user.ID, err)
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch chats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// GetChat handles GET /api/chats/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	user := CurrentUser(c)

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CHAT_ID", "Invalid chat ID format")
		return
	}

	conv, err := h.chatService.GetConversation(c.Request.Context(), chatID, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			respondError(c, http.StatusNotFound, "CHAT_NOT_FOUND", "Chat not found or you don't have permission")
			return
		}
		log.Printf("Failed to fetch chat %s for user %s: %v", chatID, user.ID, err)
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":         conv.ID,
			"title":      conv.Title,
			"messages":   conv.Messages,
			"lastUpdate": conv.LastActivity,
			"createdAt":  conv.CreatedAt,
		},
	})
}

// DeleteChat handles DELETE /api/chats/:id
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	user := CurrentUser(c)

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CHAT_ID", "Invalid chat ID format")
		return
	}

	if err := h.chatService.DeleteConversation(c.Request.Context(), chatID, user.ID); err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			respondError(c, http.StatusNotFound, "CHAT_NOT_FOUND", "Chat not found or you don't have permission")
			return
		}
		log.Printf("Failed to delete chat %s for user %s: %v", chatID, user.ID, err)
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "Chat deleted successfully"},
	})
}
