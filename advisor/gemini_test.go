package advisor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dinecommand/config"
)

func geminiBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(GeminiResponse{Candidates: []*GeminiCandidate{{
		Content: &GeminiContent{Parts: []*GeminiPart{{Text: text}}, Role: "model"},
	}}})
	require.NoError(t, err)
	return string(b)
}

func newTestClient(url string) *GeminiClient {
	return NewGeminiClient(config.GeminiConfig{APIKey: "test-key", Model: "gemini-test", BaseURL: url + "/"})
}

func TestGeminiClient_Analyze(t *testing.T) {
	var gotPath, gotKey string
	var gotReq GeminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(geminiBody(t, `{"analysis":"Table is slow.","suggested_actions":["Check in","Offer dessert","Comp drinks"],"priority_score":7}`)))
	}))
	defer server.Close()

	res, err := newTestClient(server.URL).Analyze(context.Background(), "the prompt")
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "the prompt", gotReq.Contents[0].Parts[0].Text)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
	assert.Contains(t, gotReq.GenerationConfig.ResponseSchema.Properties, "priority_score")

	assert.Equal(t, "Table is slow.", res.Analysis)
	assert.Equal(t, []string{"Check in", "Offer dessert", "Comp drinks"}, res.SuggestedActions)
	assert.Equal(t, 7, res.PriorityScore)
}

func TestGeminiClient_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockStatusCode int
	}{
		{name: "server error", mockResponse: `{"error":"boom"}`, mockStatusCode: http.StatusInternalServerError},
		{name: "not json", mockResponse: `<html>`, mockStatusCode: http.StatusOK},
		{name: "no candidates", mockResponse: `{"candidates":[]}`, mockStatusCode: http.StatusOK},
		{name: "empty text", mockResponse: `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, mockStatusCode: http.StatusOK},
		{name: "malformed advisory", mockResponse: `{"candidates":[{"content":{"parts":[{"text":"not json"}]}}]}`, mockStatusCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.mockStatusCode)
				_, _ = w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Analyze(context.Background(), "p")
			assert.Error(t, err)
		})
	}
}

func TestGeminiClient_RespectsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Analyze(ctx, "p")
	assert.Error(t, err)
}

func TestGeminiClient_MissingKey(t *testing.T) {
	c := NewGeminiClient(config.GeminiConfig{Model: "m", BaseURL: "http://127.0.0.1:1"})
	_, err := c.Analyze(context.Background(), "p")
	assert.Error(t, err)
}

func TestParseAdvisory(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore int
		wantErr   bool
	}{
		{name: "plain", text: `{"analysis":"a","suggested_actions":["x"],"priority_score":3}`, wantScore: 3},
		{name: "float integral", text: `{"analysis":"a","suggested_actions":[],"priority_score":8.0}`, wantScore: 8},
		{name: "fenced", text: "```json\n{\"analysis\":\"a\",\"suggested_actions\":[\"x\"],\"priority_score\":5}\n```", wantScore: 5},
		{name: "fractional score", text: `{"analysis":"a","suggested_actions":["x"],"priority_score":5.5}`, wantErr: true},
		{name: "missing score", text: `{"analysis":"a","suggested_actions":["x"]}`, wantErr: true},
		{name: "missing actions", text: `{"analysis":"a","priority_score":1}`, wantErr: true},
		{name: "garbage", text: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseAdvisory(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAdvisory() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, tt.wantScore, res.PriorityScore)
			}
		})
	}
}
