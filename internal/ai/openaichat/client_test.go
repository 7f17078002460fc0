package openaichat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sendright/ai-backend/internal/ai"
	"github.com/sendright/ai-backend/internal/types"
)

func chatReply(text string) string {
	b, _ := json.Marshal(text)
	return `{"choices":[{"message":{"role":"assistant","content":` + string(b) + `}}]}`
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(chatReply("a solid answer")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, []string{"openai/gpt-5-mini-2025-08-07"})
	got, err := c.Generate(context.Background(), &ai.Request{
		Model:       "openai/gpt-5-mini-2025-08-07",
		APIKey:      "sk-test",
		Instruction: "Summarize:",
		Input:       "a long story",
		Verbosity:   types.VerbosityNormal,
	})
	require.NoError(t, err)
	require.Equal(t, "a solid answer", got)

	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "openai/gpt-5-mini-2025-08-07", gotBody.Model)
	require.Equal(t, normalMaxTokens, gotBody.MaxTokens)

	// Instruction rides in the system message, raw text in the user one.
	require.Len(t, gotBody.Messages, 2)
	require.Equal(t, "system", gotBody.Messages[0].Role)
	require.Contains(t, gotBody.Messages[0].Content, "Summarize:")
	require.Equal(t, "user", gotBody.Messages[1].Role)
	require.Equal(t, "a long story", gotBody.Messages[1].Content)
}

func TestGenerate_NoInstructionSkipsSystemMessage(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(chatReply("hi")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Generate(context.Background(), &ai.Request{Model: "m", APIKey: "k", Input: "hello"})
	require.NoError(t, err)

	require.Len(t, gotBody.Messages, 1)
	require.Equal(t, "user", gotBody.Messages[0].Role)
}

func TestGenerate_DetailedTokenBudget(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(chatReply("long detailed answer")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Generate(context.Background(), &ai.Request{
		Model: "m", APIKey: "k", Input: "x", Verbosity: types.VerbosityDetailed,
	})
	require.NoError(t, err)
	require.Equal(t, detailedMaxTokens, gotBody.MaxTokens)
}

func TestGenerate_ClassifiesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Generate(context.Background(), &ai.Request{Model: "m", APIKey: "bad", Input: "x"})
	require.Equal(t, ai.KindAuthOrQuota, ai.KindOf(err))
}

func TestGenerate_EmptyChoicesIsDegenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Generate(context.Background(), &ai.Request{Model: "m", APIKey: "k", Input: "x"})
	require.Equal(t, ai.KindDegenerateResponse, ai.KindOf(err))
}

func TestDefaults(t *testing.T) {
	c := NewClient("", nil)
	require.Equal(t, []string{defaultModel}, c.Models())
	require.Equal(t, "gpt5", c.Name())
}
