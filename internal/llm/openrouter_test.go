package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "gen-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "openai/gpt-4.1-nano",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}
  ]
}`

func completionServer(t *testing.T, status int, content string, calls *int32, inspect func(map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if inspect != nil {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			inspect(body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "upstream says no", "code": 429}}`))
			return
		}
		quoted, _ := json.Marshal(content)
		_, _ = w.Write([]byte(strings.Replace(completionBody, "%s", string(quoted), 1)))
	}))
}

func newTestOpenRouter(t *testing.T, baseURL string) *OpenRouterClient {
	t.Helper()
	cfg := DefaultOpenRouterConfig()
	cfg.BaseURL = baseURL
	client, err := NewOpenRouterClient(cfg, "test-key")
	require.NoError(t, err)
	return client
}

func TestOpenRouterClient_Complete(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusOK, "```\nImproved text\n```", &calls, func(body map[string]any) {
		assert.Equal(t, "openai/gpt-4.1-nano", body["model"])
		assert.EqualValues(t, 1, body["n"])
		assert.EqualValues(t, 512, body["max_tokens"])
		assert.InDelta(t, 0.2, body["temperature"], 1e-9)

		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])
		assert.Equal(t, "raw text", messages[1].(map[string]any)["content"])
	})
	defer srv.Close()

	client := newTestOpenRouter(t, srv.URL)
	got, err := client.Complete(context.Background(), CompletionRequest{
		System:      "be helpful",
		Prompt:      "raw text",
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Improved text", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestOpenRouterClient_EmptyReply(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "   ", nil, nil)
	defer srv.Close()

	_, err := newTestOpenRouter(t, srv.URL).Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var respErr *ResponseError
	assert.ErrorAs(t, err, &respErr)
}

func TestOpenRouterClient_StatusErrorNoRetry(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusTooManyRequests, "", &calls, nil)
	defer srv.Close()

	_, err := newTestOpenRouter(t, srv.URL).Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "client must not retry")
}

func TestOpenRouterClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestOpenRouter(t, srv.URL).Complete(ctx, CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
