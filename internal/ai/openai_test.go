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

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &OpenAIClient{http: srv.Client(), apiKey: "test-key", baseURL: srv.URL}
}

func TestOpenAIDo(t *testing.T) {
	var got openAIChatReq
	c := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices":[{"message":{"content":"text_0: Hello"}}],
			"usage":{"prompt_tokens":12,"completion_tokens":7}
		}`))
	})

	resp, err := c.Do(context.Background(), Request{
		System:    "translate",
		Prompt:    "text_0: Hei",
		Model:     "gpt-test",
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "translate", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "text_0: Hei", got.Messages[1].Content)

	assert.Equal(t, "text_0: Hello", resp.Text)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 7, resp.TokensOut)
}

func TestOpenAIDoOmitsEmptySystem(t *testing.T) {
	var got openAIChatReq
	c := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestOpenAIDoRateLimited(t *testing.T) {
	c := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestOpenAIDoServerError(t *testing.T) {
	c := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	assert.Error(t, err)
}

func TestOpenAIDoNoChoices(t *testing.T) {
	c := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	assert.Error(t, err)
}

func TestOpenAIDoMissingKey(t *testing.T) {
	c := &OpenAIClient{http: http.DefaultClient, baseURL: "http://127.0.0.1:0"}
	_, err := c.Do(context.Background(), Request{Prompt: "hi", Model: "m"})
	assert.Error(t, err)
}
