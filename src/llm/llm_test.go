package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/content"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Config{APIKey: "sk-test", Model: "test/model", BaseURL: srv.URL + "/"}, zerolog.Nop())
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func reply(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(ChatResponse{Choices: []Choice{{Message: ResponseMessage{Content: text}}}})
}

func TestCompleteNotConfigured(t *testing.T) {
	c := New(Config{Model: "m"}, zerolog.Nop())
	_, err := c.Complete(context.Background(), Request{UserContent: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNotConfigured)
}

func TestCompleteSendsConversation(t *testing.T) {
	var got ChatRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, "  answer \n")
	})

	text, err := c.Complete(context.Background(), Request{
		SystemPrompt: "be brief",
		History:      []Turn{{Role: RoleUser, Text: "q1"}, {Role: RoleAssistant, Text: "a1"}},
		UserContent:  "q2",
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "q2", got.Messages[3].Content[0].Text)
	assert.Equal(t, "test/model", got.Model)
	assert.Nil(t, got.Provider)
}

func TestMessagesAttachImage(t *testing.T) {
	msgs := Messages(Request{UserContent: "describe", Image: &content.Image{Base64PNG: "AAAA"}})
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "image_url", msgs[0].Content[1].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", msgs[0].Content[1].ImageURL.URL)
}

func TestProviderPreferences(t *testing.T) {
	var got ChatRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, "ok")
	})
	c.cfg.Providers = []string{"openai", "azure"}

	_, err := c.Complete(context.Background(), Request{UserContent: "x"})
	require.NoError(t, err)
	require.NotNil(t, got.Provider)
	assert.Equal(t, []string{"openai", "azure"}, got.Provider.Order)
	assert.False(t, *got.Provider.AllowFallbacks)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		reply(w, "third time")
	})

	text, err := c.Complete(context.Background(), Request{UserContent: "x"})
	require.NoError(t, err)
	assert.Equal(t, "third time", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth","code":401}}`))
	})

	_, err := c.Complete(context.Background(), Request{UserContent: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "bad key", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteGivesUp(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, "")
	})
	_, err := c.Complete(context.Background(), Request{UserContent: "x"})
	assert.ErrorContains(t, err, "failed after 3 attempts")
}

func TestCompleteHonoursContext(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, Request{UserContent: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, c.Ping(context.Background()))
}
