package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
)

func TestGroqClientComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"role": "assistant", "content": "hello there"}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer server.Close()

	groq := NewGroqClient(server.URL, "sk-test")
	completion, err := groq.Complete(context.Background(), entity.CompletionRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "You are helpful."},
			{Role: entity.RoleUser, Content: "hi"},
		},
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   100,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello there", completion.Content)
	assert.Equal(t, 42, completion.TokenCount)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "llama-3.3-70b-versatile", gotBody["model"])
	assert.Len(t, gotBody["messages"], 2)
}

func TestGroqClientNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit reached"}}`))
	}))
	defer server.Close()

	groq := NewGroqClient(server.URL, "sk-test")
	_, err := groq.Complete(context.Background(), entity.CompletionRequest{Model: "m"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limit reached")
}

func TestGroqClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 0}}`))
	}))
	defer server.Close()

	groq := NewGroqClient(server.URL, "sk-test")
	_, err := groq.Complete(context.Background(), entity.CompletionRequest{Model: "m"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestGroqClientDefaultBaseURL(t *testing.T) {
	groq := NewGroqClient("", "sk-test")
	assert.Equal(t, DefaultGroqBaseURL, groq.baseURL)
}
