// Package ai provides the model-backed second-stage FAQ matcher.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/faqdesk-ai/match-engine/internal/matching"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

// ErrUnavailable indicates the model API could not be reached.
var ErrUnavailable = errors.New("model API unavailable")

// Client matches messages against FAQs using the Gemini generateContent
// API. It runs only after keyword scoring found nothing.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	model            string
	maxFAQs          int
	answerPreviewLen int
}

// Config holds AI client configuration.
type Config struct {
	APIKey           string
	Model            string // e.g., "gemini-2.0-flash"
	BaseURL          string // Default: https://generativelanguage.googleapis.com/v1beta
	Timeout          time.Duration
	MaxFAQs          int // Max candidates sent per call. Default: 20
	AnswerPreviewLen int // Answer truncation in the prompt. Default: 100
}

// NewClient creates a new Gemini matching client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if cfg.MaxFAQs <= 0 {
		cfg.MaxFAQs = 20
	}

	if cfg.AnswerPreviewLen <= 0 {
		cfg.AnswerPreviewLen = 100
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:       &http.Client{Timeout: timeout},
		baseURL:          cfg.BaseURL,
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		maxFAQs:          cfg.MaxFAQs,
		answerPreviewLen: cfg.AnswerPreviewLen,
	}, nil
}

// GenerateRequest is the generateContent request payload.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig tunes model sampling.
type GenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

// GenerateResponse is the generateContent response payload.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
	Error      *APIError   `json:"error,omitempty"`
}

// Candidate is one model completion.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// APIError is the error body returned on non-200 responses.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Text returns the first candidate's concatenated text parts.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// matchDecision is the JSON verdict the prompt instructs the model to
// return.
type matchDecision struct {
	FAQID      *string `json:"faq_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MatchFAQ asks the model which FAQ answers the message. A null ID in
// the verdict comes back as an unmatched decision, not an error; errors
// mean the call itself failed (transport, auth, unparseable reply).
func (c *Client) MatchFAQ(ctx context.Context, message string, faqs []*matching.FAQ) (*matching.AIDecision, error) {
	if len(faqs) == 0 {
		return &matching.AIDecision{Reason: "no candidate FAQs"}, nil
	}
	if len(faqs) > c.maxFAQs {
		faqs = faqs[:c.maxFAQs]
	}

	reqBody := GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: c.buildPrompt(message, faqs)}}},
		},
		GenerationConfig: &GenerationConfig{Temperature: 0.1},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp GenerateResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("API error: %s (status: %s)", errResp.Error.Message, errResp.Error.Status)
		}
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	text := genResp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	return parseDecision(text)
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}

// buildPrompt renders the matching instruction with the candidate FAQs
// inlined. The JSON examples double as the output schema.
func (c *Client) buildPrompt(message string, faqs []*matching.FAQ) string {
	var sb strings.Builder
	sb.WriteString("You are a FAQ matching expert. Analyze the user's question and find the most relevant FAQ.\n\n")
	fmt.Fprintf(&sb, "User Question: %q\n\n", message)
	sb.WriteString("Available FAQs:\n")
	sb.WriteString(c.formatFAQs(faqs))
	sb.WriteString("\n\nTask:\n")
	sb.WriteString("1. Identify which FAQ best answers the user's question\n")
	sb.WriteString("2. Return ONLY a JSON object with this format:\n")
	sb.WriteString(`{"faq_id": "the_id_of_best_matching_faq", "confidence": 0.95, "reason": "brief explanation"}`)
	sb.WriteString("\n\nIf no FAQ is relevant (confidence < 0.5), return:\n")
	sb.WriteString(`{"faq_id": null, "confidence": 0.0, "reason": "no relevant FAQ found"}`)
	sb.WriteString("\n\nReturn ONLY the JSON, no other text.")
	return sb.String()
}

// formatFAQs renders candidates as ID/Q/A blocks. Answers are truncated
// by rune so multi-byte text cannot be split mid-character.
func (c *Client) formatFAQs(faqs []*matching.FAQ) string {
	blocks := make([]string, 0, len(faqs))
	for _, faq := range faqs {
		answer := faq.Answer
		if runes := []rune(answer); len(runes) > c.answerPreviewLen {
			answer = string(runes[:c.answerPreviewLen])
		}
		blocks = append(blocks, fmt.Sprintf("ID: %s\nQ: %s\nA: %s...", faq.ID, faq.Question, answer))
	}
	return strings.Join(blocks, "\n\n")
}

// parseDecision unmarshals the model's JSON verdict into a decision.
func parseDecision(text string) (*matching.AIDecision, error) {
	cleaned := stripCodeFence(text)

	var decision matchDecision
	if err := json.Unmarshal([]byte(cleaned), &decision); err != nil {
		return nil, fmt.Errorf("parse decision: %w", err)
	}

	result := &matching.AIDecision{
		Confidence: decision.Confidence,
		Reason:     decision.Reason,
	}
	if decision.FAQID != nil && *decision.FAQID != "" {
		result.Matched = true
		result.FAQID = *decision.FAQID
	}
	return result, nil
}

// stripCodeFence removes a surrounding markdown code block and an
// optional leading language tag. Models wrap JSON in fences despite the
// prompt often enough that this is mandatory.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
		text = strings.TrimPrefix(strings.TrimSpace(text), "json")
	}
	return strings.TrimSpace(text)
}

// MockMatcher provides a scripted matcher for tests and offline demos.
type MockMatcher struct {
	Decision *matching.AIDecision
	Err      error
	Calls    int
}

// MatchFAQ returns the scripted decision.
func (m *MockMatcher) MatchFAQ(ctx context.Context, message string, faqs []*matching.FAQ) (*matching.AIDecision, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Decision != nil {
		return m.Decision, nil
	}
	return &matching.AIDecision{Reason: "no decision scripted"}, nil
}

// Matcher defines the interface for model-backed FAQ matching.
type Matcher interface {
	MatchFAQ(ctx context.Context, message string, faqs []*matching.FAQ) (*matching.AIDecision, error)
}

// Ensure implementations satisfy both this package's interface and the
// router's consumer-side one.
var (
	_ Matcher            = (*Client)(nil)
	_ Matcher            = (*MockMatcher)(nil)
	_ matching.AIMatcher = (*Client)(nil)
)
