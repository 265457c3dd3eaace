package analysis

import (
	"context"
	"log"

	"github.com/jonathan/fraudguard/internal/llm"
)

// MessageRole identifies the author of a chat message.
type MessageRole string

// Chat roles
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of the safety-assistant conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

const chatFallbackReply = "I encountered an error. Please check your connection and try again."

// Chat produces a safety-assistant reply for the conversation so far.
// Replies are plain text and are never persisted. Model failures degrade
// to a canned reply so the conversation can continue.
func (s *Service) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", &ValidationError{Fields: []string{"messages"}}
	}

	reply, err := s.generate(ctx, llm.Request{
		SystemInstruction: chatInstruction,
		Parts:             []llm.Part{{Text: buildChatPrompt(messages)}},
		Tier:              llm.TierChat,
	})
	if err != nil {
		log.Printf("[analysis] chat failed: %v", err)
		return chatFallbackReply, nil
	}
	if reply == "" {
		return "I'm sorry, I couldn't generate a response.", nil
	}
	return reply, nil
}
