package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"shopcompare/backend/internal/service/ai"
)

func TestNewProvider_Errors(t *testing.T) {
	_, err := ai.NewProvider(ai.Config{})
	require.ErrorIs(t, err, ai.ErrMissingAPIKey)

	_, err = ai.NewProvider(ai.Config{APIKey: "key"})
	require.ErrorIs(t, err, ai.ErrMissingModel)

	_, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "model", Provider: "unknown"})
	require.ErrorIs(t, err, ai.ErrInvalidProvider)

	_, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "model", Provider: ai.ProviderCompatible})
	require.ErrorIs(t, err, ai.ErrMissingBaseURL)

	_, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "model", Endpoint: "embeddings"})
	require.Error(t, err)
}

func TestNewProvider_Names(t *testing.T) {
	openaiProvider, err := ai.NewProvider(ai.Config{APIKey: "key", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderOpenAI, openaiProvider.Name())

	compatible, err := ai.NewProvider(ai.Config{
		Provider: ai.ProviderCompatible,
		APIKey:   "key",
		Model:    "model",
		BaseURL:  "https://example.com",
	})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderCompatible, compatible.Name())

	anthropicProvider, err := ai.NewProvider(ai.Config{Provider: ai.ProviderAnthropic, APIKey: "key", Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderAnthropic, anthropicProvider.Name())
}

func newChatServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const chatReply = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Product 2 is the better value."}}]}`

func TestOpenAIProvider_Complete(t *testing.T) {
	var req map[string]any
	srv := newChatServer(t, http.StatusOK, chatReply, &req)

	provider, err := ai.NewProvider(ai.Config{
		Provider: ai.ProviderCompatible,
		APIKey:   "key",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)

	text, err := provider.Complete(context.Background(), "be helpful", "compare these")
	require.NoError(t, err)
	require.Equal(t, "Product 2 is the better value.", text)

	require.Equal(t, "gpt-4o-mini", req["model"])
	require.InDelta(t, 0.7, req["temperature"], 0.0001)
	require.EqualValues(t, 1000, req["max_tokens"])
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ai.ErrProviderAuth},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ai.ErrProviderRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newChatServer(t, tt.status, `{"error":{"message":"nope","type":"error"}}`, nil)
			provider, err := ai.NewProvider(ai.Config{Provider: ai.ProviderCompatible, APIKey: "key", Model: "m", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = provider.Complete(context.Background(), "", "hi")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenAIProvider_EmptyReply(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	provider, err := ai.NewProvider(ai.Config{Provider: ai.ProviderCompatible, APIKey: "key", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), "", "hi")
	require.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
"content":[{"type":"text","text":"Pick the first one."}],"stop_reason":"end_turn",
"usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer srv.Close()

	provider, err := ai.NewProvider(ai.Config{
		Provider: ai.ProviderAnthropic,
		APIKey:   "key",
		Model:    "claude-3-5-haiku-latest",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)

	text, err := provider.Complete(context.Background(), "system text", "compare")
	require.NoError(t, err)
	require.Equal(t, "Pick the first one.", text)
	require.EqualValues(t, 1000, req["max_tokens"])
	require.NotNil(t, req["system"])
}

func TestAnthropicProvider_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	provider, err := ai.NewProvider(ai.Config{Provider: ai.ProviderAnthropic, APIKey: "bad", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), "", "hi")
	require.ErrorIs(t, err, ai.ErrProviderAuth)
}
