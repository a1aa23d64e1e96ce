package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{"index": 0, "delta": map[string]string{"content": content}}},
	})
	return fmt.Sprintf("data: %s\n\n", payload)
}

func TestOpenAIAskStreamsDeltas(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "hello?", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"# Hel", "lo**world**"} {
			_, _ = io.WriteString(w, sseChunk(part))
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()

	backend := NewOpenAI("sk-test", srv.URL+"/v1", "test-model", nil)
	body, err := backend.Ask(context.Background(), "hello?")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "# Hello**world**", string(got))
}

func TestOpenAIAskRejected(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()

	backend := NewOpenAI("sk-bad", srv.URL+"/v1", "", nil)
	_, err := backend.Ask(context.Background(), "hello?")
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.True(t, strings.Contains(DetailOf(err), "bad key"))
}

func TestOpenAIKnowledgeBaseUnsupported(t *testing.T) {
	backend := NewOpenAI("sk", "", "", nil)

	_, err := backend.UploadCSV(context.Background(), "faq.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = backend.DeleteCSV(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = backend.ReloadVectorDB(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}
