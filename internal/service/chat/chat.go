// Package chat manages conversations: appending messages, building the
// bounded context window sent to the provider, and triggering summarization
// once a conversation outgrows the window.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sendright/ai-backend/internal/config"
	"github.com/sendright/ai-backend/internal/storage"
	"github.com/sendright/ai-backend/internal/types"
)

// greeting opens every new conversation as a SYSTEM message. It is shown to
// the user but excluded from context windows, so greeting noise never leaks
// into prompts.
const greeting = "Hello! I'm ready to help with any questions or tasks you have. What can I assist you with today?"

// Generator is the AI dependency: the router's conversational path.
type Generator interface {
	ExecuteChat(ctx context.Context, publicKey string, provider types.ProviderID, message string) (string, error)
}

// ProviderSelector resolves the device's provider preference at call time.
type ProviderSelector interface {
	Provider(ctx context.Context, publicKey string) (types.ProviderID, error)
}

// Service implements the conversation logic over a ConversationStore.
type Service struct {
	generator Generator
	store     storage.ConversationStore
	selector  ProviderSelector
	logger    *logrus.Logger
	cfg       config.ContextConfig
	now       func() time.Time
}

// New creates a chat service.
func New(generator Generator, store storage.ConversationStore, selector ProviderSelector, logger *logrus.Logger, cfg config.ContextConfig) *Service {
	return &Service{
		generator: generator,
		store:     store,
		selector:  selector,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SendMessageResult carries the assistant reply plus the updated
// conversation snapshot back to the client.
type SendMessageResult struct {
	Message      types.Message       `json:"message"`
	Conversation *types.Conversation `json:"conversation"`
}

// SendMessage appends the user's message, asks the provider for a reply
// grounded in the conversation context, appends the reply, and checks the
// summarization trigger.
func (s *Service) SendMessage(ctx context.Context, publicKey, content string) (*SendMessageResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	conv, err := s.currentOrNew(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	conv.Append(types.NewMessage(conv.ID, content, true))
	if err := s.store.SaveCurrent(ctx, publicKey, conv); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	provider, err := s.selector.Provider(ctx, publicKey)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	prompt := s.contextualPrompt(conv, content)
	reply, err := s.generator.ExecuteChat(ctx, publicKey, provider, prompt)
	if err != nil {
		// The user message stays in the log; only the reply is missing.
		return nil, err
	}

	aiMsg := types.NewMessage(conv.ID, reply, false)
	conv.Append(aiMsg)
	if err := s.store.SaveCurrent(ctx, publicKey, conv); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	s.maybeSummarize(ctx, publicKey, conv, provider)

	return &SendMessageResult{Message: aiMsg, Conversation: conv}, nil
}

// currentOrNew loads the active conversation or starts a fresh one.
func (s *Service) currentOrNew(ctx context.Context, publicKey string) (*types.Conversation, error) {
	conv, err := s.store.Current(ctx, publicKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load current conversation: %w", err)
	}
	return s.NewConversation(ctx, publicKey)
}

// NewConversation starts a conversation with the greeting message and makes
// it current.
func (s *Service) NewConversation(ctx context.Context, publicKey string) (*types.Conversation, error) {
	conv := types.NewConversation(s.now())

	msg := types.NewMessage(conv.ID, greeting, false)
	msg.MessageType = types.MessageTypeSystem
	conv.Append(msg)

	if err := s.store.SaveCurrent(ctx, publicKey, conv); err != nil {
		return nil, fmt.Errorf("save new conversation: %w", err)
	}
	return conv, nil
}

// Current returns the active conversation, creating one if none exists.
func (s *Service) Current(ctx context.Context, publicKey string) (*types.Conversation, error) {
	return s.currentOrNew(ctx, publicKey)
}

// List returns the conversation history, most recently updated first.
func (s *Service) List(ctx context.Context, publicKey string) ([]types.ConversationSummary, error) {
	return s.store.List(ctx, publicKey)
}

// Activate makes a historical conversation current.
func (s *Service) Activate(ctx context.Context, publicKey string, id uuid.UUID) (*types.Conversation, error) {
	conv, err := s.store.Load(ctx, publicKey, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCurrent(ctx, publicKey, conv); err != nil {
		return nil, fmt.Errorf("activate conversation: %w", err)
	}
	return conv, nil
}

// Delete removes a conversation.
func (s *Service) Delete(ctx context.Context, publicKey string, id uuid.UUID) error {
	return s.store.Delete(ctx, publicKey, id)
}

// BuildContext renders the bounded context window: the stored summary if
// present, then the last WindowSize TEXT messages in append order. SUMMARY
// and SYSTEM entries never appear here, which also keeps summaries from
// being summarized recursively.
func (s *Service) BuildContext(conv *types.Conversation) string {
	text := conv.TextMessages()
	if len(text) > s.cfg.WindowSize {
		text = text[len(text)-s.cfg.WindowSize:]
	}

	var sb strings.Builder
	if conv.Summary != nil {
		sb.WriteString("Previous conversation summary: ")
		sb.WriteString(*conv.Summary)
		sb.WriteString("\n\n")
	}
	if len(text) > 0 {
		sb.WriteString("Recent conversation history:\n")
		for _, msg := range text {
			sb.WriteString(roleLabel(msg))
			sb.WriteString(": ")
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *Service) contextualPrompt(conv *types.Conversation, userMessage string) string {
	var sb strings.Builder
	sb.WriteString(s.BuildContext(conv))
	sb.WriteString("Current user message: ")
	sb.WriteString(userMessage)
	sb.WriteString("\n\n")
	sb.WriteString("Please respond naturally considering the conversation context above. ")
	sb.WriteString("Keep your response conversational and relevant to our ongoing discussion.")
	return sb.String()
}

// maybeSummarize runs the summarization check after an assistant append.
// The trigger is level-based: any append past the threshold re-attempts
// until a summary exists, so a transient failure at the threshold does not
// permanently disable summarization. Failures are logged and swallowed —
// summarization is a best-effort enhancement, not a user-facing action.
func (s *Service) maybeSummarize(ctx context.Context, publicKey string, conv *types.Conversation, provider types.ProviderID) {
	if len(conv.Messages) < s.cfg.SummarizeTrigger || conv.Summary != nil {
		return
	}
	if err := s.summarize(ctx, publicKey, conv, provider); err != nil {
		s.logger.WithError(err).WithField("conversation_id", conv.ID).Warn("summarization failed")
	}
}

// summarize condenses the oldest SummaryHead TEXT messages into a stored
// summary and appends a SUMMARY-typed message for user-visible history.
// Prior messages are never deleted: only the context sent to the provider
// is compacted.
func (s *Service) summarize(ctx context.Context, publicKey string, conv *types.Conversation, provider types.ProviderID) error {
	text := conv.TextMessages()
	if len(text) < s.cfg.SummaryMinMessages {
		return nil
	}
	if len(text) > s.cfg.SummaryHead {
		text = text[:s.cfg.SummaryHead]
	}

	var transcript strings.Builder
	for i, msg := range text {
		if i > 0 {
			transcript.WriteString("\n")
		}
		transcript.WriteString(roleLabel(msg))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
	}

	prompt := fmt.Sprintf(`Please provide a concise summary of this conversation between a user and an AI assistant.
Focus on the main topics discussed, key questions asked, and important information shared.
Keep the summary under 150 words and make it useful for providing context in future conversations.

Conversation to summarize:
%s

Summary:`, transcript.String())

	summary, err := s.generator.ExecuteChat(ctx, publicKey, provider, prompt)
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	summary = strings.TrimSpace(summary)

	conv.Summary = &summary

	msg := types.NewMessage(conv.ID, "Conversation Summary: "+summary, false)
	msg.MessageType = types.MessageTypeSummary
	conv.Append(msg)

	if err := s.store.SaveCurrent(ctx, publicKey, conv); err != nil {
		return fmt.Errorf("save summarized conversation: %w", err)
	}

	s.logger.WithField("conversation_id", conv.ID).Info("conversation summarized")
	return nil
}

func roleLabel(msg types.Message) string {
	if msg.IsFromUser {
		return "User"
	}
	return "Assistant"
}
