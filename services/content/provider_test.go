package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/config"
)

func TestNewProviderSelection(t *testing.T) {
	assert.Nil(t, NewProvider(nil))
	assert.Nil(t, NewProvider(&config.AIConfig{Provider: "openai"}), "no api key")
	assert.Nil(t, NewProvider(&config.AIConfig{Provider: "unknown", ApiKey: "k"}))
	assert.NotNil(t, NewProvider(&config.AIConfig{Provider: "openai", ApiKey: "k"}))
	assert.NotNil(t, NewProvider(&config.AIConfig{Provider: "groq", ApiKey: "k"}))
}

func TestChatCompletionsProviderGenerate(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "SUBJECT: Hi\n\nBody"}},
			},
		})
	}))
	defer server.Close()

	provider := NewProvider(&config.AIConfig{
		Provider: "openai",
		ApiKey:   "secret",
		ApiUrl:   server.URL,
		Model:    "gpt-4o-mini",
	})
	require.NotNil(t, provider)

	out, err := provider.Generate(context.Background(), "system", "user", 200)
	require.NoError(t, err)

	assert.Equal(t, "SUBJECT: Hi\n\nBody", out)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, 400, gotReq.MaxTokens)
}

func TestChatCompletionsProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewProvider(&config.AIConfig{Provider: "openai", ApiKey: "k", ApiUrl: server.URL})

	_, err := provider.Generate(context.Background(), "s", "u", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
