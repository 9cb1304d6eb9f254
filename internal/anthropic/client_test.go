package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrail/papertrail-api/internal/anthropic"
	"github.com/papertrail/papertrail-api/internal/provider/resilience"
)

// testClient builds a client against server with retries tightened so failure
// tests stay fast.
func testClient(serverURL string) *anthropic.Client {
	cbConfig := resilience.DefaultCircuitBreakerConfig("anthropic-test")
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.Requests >= 100
	}

	return anthropic.NewClient(anthropic.ClientConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Logger:  zerolog.New(io.Discard),
		HTTPClient: resilience.NewClient(resilience.ClientConfig{
			Name:            "anthropic-test",
			Timeout:         5 * time.Second,
			MaxRetries:      1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			CircuitBreaker:  &cbConfig,
		}),
	})
}

func messagesResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(body)
}

func TestClient_AnalyzeDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["model"])

		_, _ = w.Write([]byte(messagesResponse(`[{"title":"Pay invoice","description":"Due soon","due_date":null,"priority":"high"}]`)))
	}))
	defer server.Close()

	client := testClient(server.URL)

	tasks, err := client.AnalyzeDocument(context.Background(), "aGVsbG8=", "image/jpeg")
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay invoice", tasks[0].Title)
	assert.Equal(t, "high", tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
}

func TestClient_AnalyzeDocument_StripsCodeFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(messagesResponse("```json\n[{\"title\":\"Renew permit\",\"due_date\":null}]\n```")))
	}))
	defer server.Close()

	client := testClient(server.URL)

	tasks, err := client.AnalyzeDocument(context.Background(), "aGVsbG8=", "image/png")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Renew permit", tasks[0].Title)
}

func TestClient_AnalyzeDocument_EmptyTaskListFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(messagesResponse("[]")))
	}))
	defer server.Close()

	client := testClient(server.URL)

	tasks, err := client.AnalyzeDocument(context.Background(), "aGVsbG8=", "image/jpeg")
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, "Unable to Process Document", tasks[0].Title)
	assert.True(t, tasks[0].NeedsRetake)
}

func TestClient_AnalyzeDocument_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(messagesResponse("I could not find any tasks in this image.")))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.AnalyzeDocument(context.Background(), "aGVsbG8=", "image/jpeg")
	assert.ErrorIs(t, err, anthropic.ErrUpstream)
}

func TestClient_AnalyzeDocument_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.AnalyzeDocument(context.Background(), "aGVsbG8=", "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, anthropic.ErrUpstream)

	var upstreamErr *anthropic.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.Equal(t, "invalid x-api-key", upstreamErr.Message)
}

func TestClient_GenerateDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		_, _ = w.Write([]byte(messagesResponse("  Dear Sir or Madam,\n\nI am writing regarding...\n")))
	}))
	defer server.Close()

	client := testClient(server.URL)

	draft, err := client.GenerateDraft(context.Background(), anthropic.Task{Title: "Respond to tax letter"}, anthropic.DraftLetter)
	require.NoError(t, err)
	assert.Equal(t, "Dear Sir or Madam,\n\nI am writing regarding...", draft)
}

func TestClient_GenerateDraft_InvalidType(t *testing.T) {
	client := testClient("http://localhost:0")

	_, err := client.GenerateDraft(context.Background(), anthropic.Task{Title: "x"}, anthropic.DraftType("poem"))
	assert.Error(t, err)
}

func TestDraftType_Valid(t *testing.T) {
	for _, dt := range []anthropic.DraftType{anthropic.DraftEmail, anthropic.DraftLetter, anthropic.DraftForm, anthropic.DraftAppeal} {
		assert.True(t, dt.Valid(), string(dt))
	}
	assert.False(t, anthropic.DraftType("").Valid())
	assert.False(t, anthropic.DraftType("memo").Valid())
}

func TestSupportedMimeType(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
		assert.True(t, anthropic.SupportedMimeType(mt), mt)
	}
	assert.False(t, anthropic.SupportedMimeType("application/pdf"))
	assert.False(t, anthropic.SupportedMimeType("image/tiff"))
	assert.False(t, anthropic.SupportedMimeType(""))
}
