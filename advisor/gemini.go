package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/yeremiapane/dinecommand/config"
	"github.com/yeremiapane/dinecommand/models"
)

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Parts []*GeminiPart `json:"parts"`
	Role  string        `json:"role,omitempty"`
}

type GeminiSchema struct {
	Type       string                   `json:"type"`
	Properties map[string]*GeminiSchema `json:"properties,omitempty"`
	Items      *GeminiSchema            `json:"items,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type GeminiGenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
}

type GeminiRequest struct {
	Contents         []*GeminiContent        `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiCandidate struct {
	Content *GeminiContent `json:"content"`
}

type GeminiResponse struct {
	Candidates []*GeminiCandidate `json:"candidates"`
}

// advisorySchema is the structured shape the model must answer with.
var advisorySchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"analysis":          {Type: "STRING"},
		"suggested_actions": {Type: "ARRAY", Items: &GeminiSchema{Type: "STRING"}},
		"priority_score":    {Type: "NUMBER"},
	},
	Required: []string{"analysis", "suggested_actions", "priority_score"},
}

var ErrEmptyResponse = errors.New("no response from gemini")

// GeminiClient calls the generateContent endpoint and decodes the JSON
// advisory the model returns.
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

func (g *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.BaseURL, g.Model)
}

// Analyze sends prompt and returns the parsed advisory. Any transport, status
// or decoding problem is returned as an error; the caller owns the fallback.
func (g *GeminiClient) Analyze(ctx context.Context, prompt string) (models.AdvisoryResult, error) {
	if g.APIKey == "" {
		return models.AdvisoryResult{}, errors.New("gemini api key is not configured")
	}

	payload := GeminiRequest{
		Contents: []*GeminiContent{{
			Parts: []*GeminiPart{{Text: prompt}},
			Role:  "user",
		}},
		GenerationConfig: &GeminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   advisorySchema,
		},
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return models.AdvisoryResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewBuffer(payloadJSON))
	if err != nil {
		return models.AdvisoryResult{}, err
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return models.AdvisoryResult{}, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return models.AdvisoryResult{}, err
	}
	if res.StatusCode != http.StatusOK {
		return models.AdvisoryResult{}, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes GeminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return models.AdvisoryResult{}, err
	}
	text, err := firstText(geminiRes)
	if err != nil {
		return models.AdvisoryResult{}, err
	}
	return ParseAdvisory(text)
}

func firstText(res GeminiResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0] == nil || res.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	parts := res.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0] == nil || strings.TrimSpace(parts[0].Text) == "" {
		return "", ErrEmptyResponse
	}
	return parts[0].Text, nil
}

type advisoryPayload struct {
	Analysis         *string  `json:"analysis"`
	SuggestedActions []string `json:"suggested_actions"`
	PriorityScore    *float64 `json:"priority_score"`
}

// ParseAdvisory decodes the model text. Models sometimes wrap JSON in a
// markdown fence, which is stripped. Missing fields or a non-integral score
// are treated as malformed.
func ParseAdvisory(text string) (models.AdvisoryResult, error) {
	text = stripFence(text)

	var p advisoryPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return models.AdvisoryResult{}, fmt.Errorf("decode advisory: %w", err)
	}
	if p.Analysis == nil || p.PriorityScore == nil || p.SuggestedActions == nil {
		return models.AdvisoryResult{}, errors.New("advisory is missing required fields")
	}
	score := *p.PriorityScore
	if score != math.Trunc(score) {
		return models.AdvisoryResult{}, fmt.Errorf("priority score %v is not an integer", score)
	}
	return models.AdvisoryResult{
		Analysis:         *p.Analysis,
		SuggestedActions: p.SuggestedActions,
		PriorityScore:    int(score),
	}, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
