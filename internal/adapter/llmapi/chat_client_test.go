package llmapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"agent-orchestrator/internal/adapter/llmapi"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChatClient_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello there"}},
			},
		})
	}))
	defer server.Close()

	client := llmapi.NewChatClient(server.URL, "test-key", "test-model", 0.1, server.Client(), discardLogger())

	got, err := client.Chat(context.Background(), "system prompt", "user prompt", 256)
	assert.NoError(t, err)
	assert.Equal(t, "hello there", got)
	assert.Equal(t, "test-model", gotBody["model"])
	assert.EqualValues(t, 256, gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	assert.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

func TestChatClient_MissingAPIKey(t *testing.T) {
	client := llmapi.NewChatClient("http://unused", "", "test-model", 0.1, http.DefaultClient, discardLogger())

	_, err := client.Chat(context.Background(), "s", "u", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestChatClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := llmapi.NewChatClient(server.URL, "test-key", "test-model", 0.1, server.Client(), discardLogger())

	_, err := client.Chat(context.Background(), "s", "u", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := llmapi.NewChatClient(server.URL, "test-key", "test-model", 0.1, server.Client(), discardLogger())

	_, err := client.Chat(context.Background(), "s", "u", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatClient_Version(t *testing.T) {
	client := llmapi.NewChatClient("http://unused", "k", "gpt-4o-mini", 0.1, http.DefaultClient, discardLogger())
	assert.Equal(t, "gpt-4o-mini", client.Version())
}

func TestOllamaEmbedder_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	embedder := llmapi.NewOllamaEmbedder(server.URL, "nomic-embed-text", server.Client())

	got, err := embedder.Encode(context.Background(), []string{"one", "two"})
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.InDelta(t, 0.1, got[0][0], 1e-6)
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
		})
	}))
	defer server.Close()

	embedder := llmapi.NewOllamaEmbedder(server.URL, "nomic-embed-text", server.Client())

	_, err := embedder.Encode(context.Background(), []string{"one", "two"})
	assert.Error(t, err)
}
