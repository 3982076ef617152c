package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/llm"
)

// ErrEmptyInput indicates a blank chat message or translation text.
var ErrEmptyInput = errors.New("input is empty")

// MaxConversationMessages bounds the history sent with each chat turn.
const MaxConversationMessages = 20

// Assistant answers free-form questions and translates text.
type Assistant struct {
	gen llm.Generator
}

func NewAssistant(gen llm.Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Chat sends message with the trailing part of conversation and returns
// the reply plus the conversation extended by both turns.
func (a *Assistant) Chat(ctx context.Context, conversation []llm.Message, message string) (string, []llm.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", conversation, ErrEmptyInput
	}

	history := conversation
	if len(history) > MaxConversationMessages {
		history = history[len(history)-MaxConversationMessages:]
	}

	resp, err := a.gen.Generate(ctx, llm.GenerateRequest{
		Task:    llm.TaskChat,
		System:  chatSystemPrompt,
		Prompt:  message,
		History: history,
	})
	if err != nil {
		return "", conversation, fmt.Errorf("llm chat failed: %w", err)
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return "", conversation, fmt.Errorf("%w: chat reply is empty", ErrEmptyResult)
	}

	updated := make([]llm.Message, len(conversation), len(conversation)+2)
	copy(updated, conversation)
	updated = append(updated,
		llm.Message{Role: llm.RoleUser, Content: message},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	return reply, updated, nil
}

// Translate renders text in targetLanguage.
func (a *Assistant) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return "", fmt.Errorf("%w: target language", ErrEmptyInput)
	}

	resp, err := a.gen.Generate(ctx, llm.GenerateRequest{
		Task:   llm.TaskTranslate,
		System: translateSystemPrompt,
		Prompt: fmt.Sprintf("Target language: %s\n\n%s", targetLanguage, text),
	})
	if err != nil {
		return "", fmt.Errorf("llm translate failed: %w", err)
	}
	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return "", fmt.Errorf("%w: translation is empty", ErrEmptyResult)
	}
	return out, nil
}
