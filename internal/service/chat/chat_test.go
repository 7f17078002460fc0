package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sendright/ai-backend/internal/config"
	"github.com/sendright/ai-backend/internal/storage/kv"
	"github.com/sendright/ai-backend/internal/storage/kvstore"
	"github.com/sendright/ai-backend/internal/types"
)

// fakeGenerator records prompts and replies with a canned response. A reply
// func can override the default.
type fakeGenerator struct {
	prompts []string
	reply   func(prompt string) (string, error)
}

func (g *fakeGenerator) ExecuteChat(ctx context.Context, publicKey string, provider types.ProviderID, message string) (string, error) {
	g.prompts = append(g.prompts, message)
	if g.reply != nil {
		return g.reply(message)
	}
	return "reply " + fmt.Sprint(len(g.prompts)), nil
}

type fixedSelector struct{}

func (fixedSelector) Provider(ctx context.Context, publicKey string) (types.ProviderID, error) {
	return types.ProviderGemini, nil
}

func testContextConfig() config.ContextConfig {
	return config.ContextConfig{
		WindowSize:         10,
		SummarizeTrigger:   19,
		SummaryHead:        15,
		SummaryMinMessages: 5,
	}
}

func newTestService(gen *fakeGenerator) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := kvstore.New(kv.NewMemory())
	return New(gen, store, fixedSelector{}, logger, testContextConfig())
}

func TestNewConversation_OpensWithGreeting(t *testing.T) {
	svc := newTestService(&fakeGenerator{})

	conv, err := svc.NewConversation(context.Background(), "pk")
	require.NoError(t, err)
	require.NotEmpty(t, conv.Title)
	require.Contains(t, conv.Title, "Chat")

	require.Len(t, conv.Messages, 1)
	require.Equal(t, types.MessageTypeSystem, conv.Messages[0].MessageType)
	require.False(t, conv.Messages[0].IsFromUser)

	// The greeting is display-only: it never feeds the context window.
	require.Empty(t, svc.BuildContext(conv))
}

func TestSendMessage_AppendsUserAndAssistant(t *testing.T) {
	gen := &fakeGenerator{reply: func(string) (string, error) { return "hi back", nil }}
	svc := newTestService(gen)

	result, err := svc.SendMessage(context.Background(), "pk", "hello")
	require.NoError(t, err)
	require.Equal(t, "hi back", result.Message.Content)
	require.False(t, result.Message.IsFromUser)

	conv := result.Conversation
	// greeting + user + assistant
	require.Len(t, conv.Messages, 3)
	require.Equal(t, "hello", conv.Messages[1].Content)
	require.True(t, conv.Messages[1].IsFromUser)
	require.Equal(t, "hi back", conv.Messages[2].Content)

	// The reply is persisted: reloading the current conversation sees it.
	loaded, err := svc.Current(context.Background(), "pk")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 3)
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	_, err := svc.SendMessage(context.Background(), "pk", "   ")
	require.Error(t, err)
}

func TestSendMessage_GeneratorFailureKeepsUserMessage(t *testing.T) {
	gen := &fakeGenerator{reply: func(string) (string, error) { return "", fmt.Errorf("provider down") }}
	svc := newTestService(gen)

	_, err := svc.SendMessage(context.Background(), "pk", "hello")
	require.Error(t, err)

	// The user's message survives the failed generation.
	conv, err := svc.Current(context.Background(), "pk")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	require.Equal(t, "hello", conv.Messages[1].Content)
}

func TestBuildContext_WindowsLastTenTextMessages(t *testing.T) {
	svc := newTestService(&fakeGenerator{})

	conv := types.NewConversation(svc.now())
	for i := 1; i <= 14; i++ {
		conv.Append(types.NewMessage(conv.ID, fmt.Sprintf("msg-%d", i), i%2 == 1))
	}

	ctx := svc.BuildContext(conv)
	require.NotContains(t, ctx, "msg-4\n", "older messages fall out of the window")
	require.Contains(t, ctx, "msg-5")
	require.Contains(t, ctx, "msg-14")
	require.Contains(t, ctx, "Recent conversation history:")
	require.NotContains(t, ctx, "Previous conversation summary")
}

func TestBuildContext_IncludesSummaryAndExcludesDerivedMessages(t *testing.T) {
	svc := newTestService(&fakeGenerator{})

	conv := types.NewConversation(svc.now())
	summary := "we discussed travel plans"
	conv.Summary = &summary

	sys := types.NewMessage(conv.ID, "system greeting", false)
	sys.MessageType = types.MessageTypeSystem
	conv.Append(sys)

	sum := types.NewMessage(conv.ID, "Conversation Summary: we discussed travel plans", false)
	sum.MessageType = types.MessageTypeSummary
	conv.Append(sum)

	conv.Append(types.NewMessage(conv.ID, "actual text", true))

	ctx := svc.BuildContext(conv)
	require.Contains(t, ctx, "Previous conversation summary: we discussed travel plans")
	require.Contains(t, ctx, "User: actual text")
	require.NotContains(t, ctx, "system greeting")
	require.NotContains(t, ctx, "Conversation Summary:")
}

func TestSendMessage_SummarizesPastTrigger(t *testing.T) {
	var summaryPrompt string
	gen := &fakeGenerator{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "concise summary of this conversation") {
			summaryPrompt = prompt
			return "a tidy summary", nil
		}
		return "ok", nil
	}}
	svc := newTestService(gen)

	// greeting(1) + 9 rounds x 2 = 19 messages after the ninth round.
	ctx := context.Background()
	for i := 1; i <= 9; i++ {
		_, err := svc.SendMessage(ctx, "pk", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	conv, err := svc.Current(ctx, "pk")
	require.NoError(t, err)

	require.NotNil(t, conv.Summary)
	require.Equal(t, "a tidy summary", *conv.Summary)

	// A SUMMARY-typed message is appended for the visible history.
	last := conv.Messages[len(conv.Messages)-1]
	require.Equal(t, types.MessageTypeSummary, last.MessageType)
	require.Equal(t, "Conversation Summary: a tidy summary", last.Content)

	// Only the oldest head of the TEXT log feeds the summary prompt.
	require.NotEmpty(t, summaryPrompt)
	require.Contains(t, summaryPrompt, "question 1")
	require.NotContains(t, summaryPrompt, "question 9")
}

func TestSendMessage_SummarizationFailureIsRetriedNextAppend(t *testing.T) {
	failSummary := true
	gen := &fakeGenerator{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "concise summary of this conversation") {
			if failSummary {
				return "", fmt.Errorf("summary model down")
			}
			return "late summary", nil
		}
		return "ok", nil
	}}
	svc := newTestService(gen)

	ctx := context.Background()
	for i := 1; i <= 9; i++ {
		_, err := svc.SendMessage(ctx, "pk", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	// The failed summarization did not fail the send and left no summary.
	conv, err := svc.Current(ctx, "pk")
	require.NoError(t, err)
	require.Nil(t, conv.Summary)

	// The next append past the threshold tries again.
	failSummary = false
	_, err = svc.SendMessage(ctx, "pk", "question 10")
	require.NoError(t, err)

	conv, err = svc.Current(ctx, "pk")
	require.NoError(t, err)
	require.NotNil(t, conv.Summary)
	require.Equal(t, "late summary", *conv.Summary)
}

func TestSendMessage_SummarizesOnlyOnce(t *testing.T) {
	summaryCalls := 0
	gen := &fakeGenerator{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "concise summary of this conversation") {
			summaryCalls++
			return "the one summary", nil
		}
		return "ok", nil
	}}
	svc := newTestService(gen)

	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		_, err := svc.SendMessage(ctx, "pk", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 1, summaryCalls)
}

func TestActivate_MakesConversationCurrent(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	ctx := context.Background()

	first, err := svc.NewConversation(ctx, "pk")
	require.NoError(t, err)
	second, err := svc.NewConversation(ctx, "pk")
	require.NoError(t, err)

	cur, err := svc.Current(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, second.ID, cur.ID)

	activated, err := svc.Activate(ctx, "pk", first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, activated.ID)

	cur, err = svc.Current(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, first.ID, cur.ID)
}

func TestList_MostRecentFirst(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	ctx := context.Background()

	first, err := svc.NewConversation(ctx, "pk")
	require.NoError(t, err)
	_, err = svc.NewConversation(ctx, "pk")
	require.NoError(t, err)

	// Touch the first conversation again so it becomes most recent.
	_, err = svc.Activate(ctx, "pk", first.ID)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "pk", "bump")
	require.NoError(t, err)

	list, err := svc.List(ctx, "pk")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
}
