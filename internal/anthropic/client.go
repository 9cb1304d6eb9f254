package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/papertrail/papertrail-api/internal/provider/resilience"
)

const (
	// ProviderName identifies this collaborator.
	ProviderName = "anthropic"

	// DefaultBaseURL is the Anthropic API base URL.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is the model used for document analysis and drafting.
	DefaultModel = "claude-sonnet-4-20250514"

	apiVersion = "2023-06-01"

	analyzeMaxTokens = 2048
	draftMaxTokens   = 1024
)

// ClientConfig holds configuration for the Anthropic client.
type ClientConfig struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the Anthropic API).
	BaseURL string

	// Model overrides the default model (optional).
	Model string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Anthropic client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeDocument extracts actionable tasks from a base64-encoded document
// image.
func (c *Client) AnalyzeDocument(ctx context.Context, image, mimeType string) ([]Task, error) {
	msgs := []message{{
		Role: "user",
		Content: []contentBlock{
			{Type: "image", Source: &imageSource{Type: "base64", MediaType: mimeType, Data: image}},
			{Type: "text", Text: analyzePrompt},
		},
	}}

	content, err := c.callMessages(ctx, msgs, analyzeMaxTokens)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal([]byte(stripFences(content)), &tasks); err != nil {
		c.logger.Warn().Err(err).Msg("collaborator returned unparseable task payload")
		return nil, &UpstreamError{StatusCode: http.StatusOK, Message: "malformed task payload"}
	}

	if len(tasks) == 0 {
		return []Task{{
			Title:       "Unable to Process Document",
			Description: "The AI could not extract tasks from this document.",
			Priority:    "medium",
			AISummary:   "Please try taking another photo with better lighting and clarity.",
			NeedsRetake: true,
		}}, nil
	}
	return tasks, nil
}

// GenerateDraft produces a ready-to-send draft of the given type for a task.
func (c *Client) GenerateDraft(ctx context.Context, task Task, draftType DraftType) (string, error) {
	if !draftType.Valid() {
		return "", fmt.Errorf("anthropic: unsupported draft type %q", draftType)
	}

	msgs := []message{{
		Role:    "user",
		Content: []contentBlock{{Type: "text", Text: draftPrompt(task, draftType)}},
	}}

	content, err := c.callMessages(ctx, msgs, draftMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) callMessages(ctx context.Context, msgs []message, maxTokens int) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  msgs,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		msg := "API error"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", msg).Msg("collaborator call failed")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}
	if len(msgResp.Content) == 0 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: "empty content"}
	}
	return msgResp.Content[0].Text, nil
}

// stripFences removes markdown code fences the model sometimes wraps JSON in.
func stripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
