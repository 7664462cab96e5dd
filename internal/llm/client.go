// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm is the client for the hosted chat-completion service.
//
// The rest of the application only sees the Client interface, so tests
// substitute a stub and the store never knows which provider is behind
// it. The shipped implementation talks to any OpenAI-compatible endpoint.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// DefaultMaxOutputTokens bounds a single completion.
const DefaultMaxOutputTokens = 10000

// validateTimeout bounds the key-validation liveness check.
const validateTimeout = 15 * time.Second

// ErrNoAPIKey is returned when a completion is requested without a key.
var ErrNoAPIKey = errors.New("api key not configured")

// ErrEmptyReply is returned when the service answers with no content.
var ErrEmptyReply = errors.New("empty reply from model")

// =============================================================================
// CLIENT CONTRACT
// =============================================================================

// Turn is one role-tagged entry of the conversation history sent to the
// service.
type Turn struct {
	Role    model.Role
	Content string
}

// Client is the chat-completion collaborator contract.
type Client interface {
	// Validate performs a cheap liveness check with the candidate key.
	// A nil error means the key works.
	Validate(ctx context.Context, apiKey string) error

	// SetAPIKey arms the client with a validated key for subsequent
	// Complete calls.
	SetAPIKey(key string)

	// Complete requests a reply for the full conversation history plus
	// the system instruction.
	Complete(ctx context.Context, history []Turn, systemInstruction string, maxOutputTokens int) (string, error)
}

// =============================================================================
// OPENAI-COMPATIBLE CLIENT
// =============================================================================

// OpenAIClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
}

// NewOpenAIClient creates a client. baseURL may be empty for the default
// endpoint; the model name is required.
func NewOpenAIClient(apiKey, baseURL, modelName string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   modelName,
	}
}

// SetAPIKey replaces the key used for subsequent calls.
func (c *OpenAIClient) SetAPIKey(key string) {
	c.apiKey = strings.TrimSpace(key)
}

// newSDKClient builds the underlying SDK client for the given key.
func (c *OpenAIClient) newSDKClient(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Validate sends a one-token test completion with the candidate key.
func (c *OpenAIClient) Validate(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	client := c.newSDKClient(strings.TrimSpace(apiKey))
	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Test"},
		},
	})
	return err
}

// Complete maps the two client roles onto the service's role vocabulary
// and requests a reply.
func (c *OpenAIClient) Complete(ctx context.Context, history []Turn, systemInstruction string, maxOutputTokens int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		if turn.Content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := c.newSDKClient(c.apiKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
