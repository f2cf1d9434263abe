package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &AnthropicClient{http: srv.Client(), apiKey: "test-key", baseURL: srv.URL}
}

func TestAnthropicDo(t *testing.T) {
	var got anthropicMsgReq
	c := newAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{
			"content":[{"text":"text_0: Hello"}],
			"usage":{"input_tokens":9,"output_tokens":4}
		}`))
	})

	resp, err := c.Do(context.Background(), Request{
		System:    "translate",
		Prompt:    "text_0: Hei",
		Model:     "claude-test",
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Equal(t, "translate", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "text_0: Hei", got.Messages[0].Content)

	assert.Equal(t, "text_0: Hello", resp.Text)
	assert.Equal(t, 9, resp.TokensIn)
	assert.Equal(t, 4, resp.TokensOut)
}

func TestAnthropicDoRateLimited(t *testing.T) {
	c := newAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestAnthropicDoEmptyContent(t *testing.T) {
	c := newAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	assert.Error(t, err)
}
