package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aurora-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// Completer produces a text completion for a prompt. History carries the
// conversation so far; whether it is forwarded upstream is the
// implementation's policy.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []models.Message) (string, error)
}

// GeminiCompleter calls the Gemini generateContent API.
type GeminiCompleter struct {
	client *genai.Client
	model  string

	// includeHistory controls whether prior conversation messages are
	// threaded into the upstream call. Off by default: the model then sees
	// each prompt in isolation.
	includeHistory bool
}

// GeminiCompleterOption is a functional option for GeminiCompleter
type GeminiCompleterOption func(*GeminiCompleter)

// GeminiWithModel overrides the default model name
func GeminiWithModel(model string) GeminiCompleterOption {
	return func(c *GeminiCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// GeminiWithHistory enables threading conversation history upstream
func GeminiWithHistory(include bool) GeminiCompleterOption {
	return func(c *GeminiCompleter) {
		c.includeHistory = include
	}
}

// NewGeminiCompleter creates a completer backed by an initialized Gemini client
func NewGeminiCompleter(client *genai.Client, opts ...GeminiCompleterOption) (*GeminiCompleter, error) {
	if client == nil {
		return nil, errors.New("gemini client not set")
	}
	c := &GeminiCompleter{
		client: client,
		model:  "gemini-2.0-flash",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends the prompt (and, when enabled, the prior history) upstream
// and returns the raw text of the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, history []models.Message) (string, error) {
	model := c.client.GenerativeModel(c.model)
	chat := model.StartChat()
	if c.includeHistory {
		chat.History = historyToContents(history)
	}

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrInvalidBotResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// historyToContents maps stored messages to the upstream role-tagged format.
// Error rows and empty messages are dropped, the bot role becomes "model",
// everything else becomes "user", and consecutive same-role entries collapse
// to the most recent one.
func historyToContents(history []models.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		if msg.Role == models.RoleError || msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == models.RoleBot {
			role = "model"
		}
		parts := []genai.Part{genai.Text(msg.Content)}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = parts
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}
