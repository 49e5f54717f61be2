package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/genai"
)

// newFakeGemini serves generateContent calls with the given status and body and
// captures the decoded request body.
func newFakeGemini(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/"+Model+":generateContent") {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
			return
		}
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	client, err := NewClient(context.Background(), ClientConfig{})

	assert.Nil(t, client)
	assert.Error(t, err)
}

func TestClientGenerate(t *testing.T) {
	t.Run("returns candidate text", func(t *testing.T) {
		var captured map[string]any
		srv := newFakeGemini(t, http.StatusOK,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi there"}]},"finishReason":"STOP"}]}`,
			&captured)

		text, err := newTestClient(t, srv.URL).Generate(context.Background(), "hello")

		require.NoError(t, err)
		assert.Equal(t, "hi there", text)

		// Only the prompt is sent; generation parameters stay unset.
		require.NotNil(t, captured)
		generationConfig, _ := captured["generationConfig"].(map[string]any)
		assert.NotContains(t, generationConfig, "maxOutputTokens")
		assert.NotContains(t, generationConfig, "temperature")
		contents, ok := captured["contents"].([]any)
		require.True(t, ok)
		require.Len(t, contents, 1)
		raw, _ := json.Marshal(contents[0])
		assert.Contains(t, string(raw), `"text":"hello"`)
	})

	t.Run("empty candidates yield empty text", func(t *testing.T) {
		srv := newFakeGemini(t, http.StatusOK, `{"candidates":[]}`, nil)

		text, err := newTestClient(t, srv.URL).Generate(context.Background(), "hello")

		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("abnormal finish reason still returns text", func(t *testing.T) {
		srv := newFakeGemini(t, http.StatusOK,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"partial"}]},"finishReason":"MAX_TOKENS"}]}`,
			nil)

		text, err := newTestClient(t, srv.URL).Generate(context.Background(), "hello")

		require.NoError(t, err)
		assert.Equal(t, "partial", text)
	})

	t.Run("api errors are returned unchanged", func(t *testing.T) {
		srv := newFakeGemini(t, http.StatusTooManyRequests,
			`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			nil)

		text, err := newTestClient(t, srv.URL).Generate(context.Background(), "hello")

		assert.Empty(t, text)
		require.Error(t, err)
		var apiErr genai.APIError
		require.True(t, errors.As(err, &apiErr), "expected genai.APIError, got %T", err)
		assert.Equal(t, 429, apiErr.Code)
		assert.Equal(t, "quota exceeded", apiErr.Message)
	})
}

func TestClientThroughQuery(t *testing.T) {
	srv := newFakeGemini(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
		nil)

	outcome := Query(context.Background(), newTestClient(t, srv.URL), QueryParams{Prompt: "hello"})

	assert.True(t, outcome.IsFailed())
	assert.True(t, strings.HasPrefix(outcome.Text(), "Error querying Gemini: "))
	assert.Contains(t, outcome.Text(), "quota exceeded")
}

func TestClientGenerateRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	okSrv := newFakeGemini(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi there"}]},"finishReason":"STOP"}]}`,
		nil)
	failSrv := newFakeGemini(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
		nil)

	_, err := newTestClient(t, okSrv.URL).Generate(context.Background(), "hello")
	require.NoError(t, err)
	_, err = newTestClient(t, failSrv.URL).Generate(context.Background(), "hello")
	require.Error(t, err)

	var spans []sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "gemini.generate_content" {
			spans = append(spans, span)
		}
	}
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
