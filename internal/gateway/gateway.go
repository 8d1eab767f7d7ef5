// Package gateway implements the server side of the chat completion
// contract: it accepts {query, model} requests, parses the flattened
// "role: content" transcript back into chat messages, and forwards them
// to an upstream OpenAI-compatible provider. Rate limiting happens here
// so clients see the documented 429 {remainingTime} responses.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RaoAkif/BotFusion/internal/chat"
)

// Config holds upstream provider settings.
type Config struct {
	// BaseURL is the OpenAI-compatible API root. Empty means the
	// default OpenAI endpoint.
	BaseURL string
	// APIKey authenticates against the provider.
	APIKey string
	// DefaultModel is used when a request carries no model.
	DefaultModel string
}

// Gateway forwards flattened transcript queries to the upstream
// provider.
type Gateway struct {
	client       *openai.Client
	logger       *slog.Logger
	defaultModel string
}

// New creates a gateway for the configured provider.
func New(cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Gateway{
		client:       openai.NewClientWithConfig(clientCfg),
		logger:       logger,
		defaultModel: cfg.DefaultModel,
	}
}

// ParseQuery splits a flattened transcript back into provider messages.
// Each "user: " or "ai: " prefix starts a new message; the ai role maps
// to the provider's assistant role. Lines without a role prefix are
// continuation text of the preceding message, or start a user message
// when nothing precedes them.
func ParseQuery(query string) []openai.ChatCompletionMessage {
	if query == "" {
		return nil
	}

	var messages []openai.ChatCompletionMessage

	appendLine := func(role, text string) {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: text,
		})
	}

	for _, line := range strings.Split(query, "\n") {
		switch {
		case strings.HasPrefix(line, chat.RoleUser+": "):
			appendLine(openai.ChatMessageRoleUser, strings.TrimPrefix(line, chat.RoleUser+": "))
		case strings.HasPrefix(line, chat.RoleAI+": "):
			appendLine(openai.ChatMessageRoleAssistant, strings.TrimPrefix(line, chat.RoleAI+": "))
		case len(messages) == 0:
			appendLine(openai.ChatMessageRoleUser, line)
		default:
			messages[len(messages)-1].Content += "\n" + line
		}
	}

	return messages
}

// Complete sends the parsed transcript upstream and returns the
// response text. The model identifier passes through opaquely; empty
// falls back to the configured default.
func (g *Gateway) Complete(ctx context.Context, query, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}

	messages := ParseQuery(query)
	if len(messages) == 0 {
		return "", fmt.Errorf("empty query")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("upstream completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
