package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanagate/internal/models"
)

func testClient(baseURL string) *Client {
	return NewClient(models.UpstreamConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     2,
		RetryInterval:  time.Millisecond,
	})
}

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"hi there"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	result, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"reply":"hi there"}`, string(result.Body))
	assert.Equal(t, "application/json", result.ContentType)
}

func TestClient_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(models.UpstreamConfig{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
		APIKey:         "secret-key",
	})

	_, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"reply":"recovered"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	result, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_ExhaustedRetriesReturnError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "MaxRetries=2 means three attempts")
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	result, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, result.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx responses are relayed, not retried")
}

func TestClient_TransportError(t *testing.T) {
	// Point at a closed server to force connection failures.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(server.URL)

	_, err := client.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	assert.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background connection
		// read; without it, client disconnects are never detected and
		// r.Context() is never cancelled, deadlocking server.Close.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := testClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, &models.ChatRequest{Message: "hello"})
	assert.Error(t, err)
}

func TestClient_OperationPaths(t *testing.T) {
	var lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	_, err := client.GenerateLesson(ctx, &models.LessonRequest{Topic: "fractions"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/lessons", lastPath)

	_, err = client.Synthesize(ctx, &models.TTSRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/tts", lastPath)

	_, err = client.Register(ctx, &models.RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/register", lastPath)
}
