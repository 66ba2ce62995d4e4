package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/librarydesk/internal/config"
)

const defaultTimeout = 30 * time.Second

// Roles understood by the chat models.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runRequest struct {
	Messages []Message `json:"messages"`
}

// RunResponse is the envelope returned by the Workers AI run endpoint.
type RunResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool       `json:"success"`
	Errors  []APIIssue `json:"errors"`
}

// APIIssue is a single entry of the response's errors array.
type APIIssue struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client talks to the Cloudflare Workers AI REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	token      string
	model      string
}

// NewClient creates a Workers AI client from the AI config section
func NewClient(cfg config.AI) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultAIModel
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountID:  cfg.AccountID,
		token:      cfg.Token,
		model:      model,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.accountID != "" && c.token != ""
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
}

// Run sends the chat to the model and returns its text answer.
// It makes a single attempt.
func (c *Client) Run(ctx context.Context, messages []Message) (string, error) {
	if !c.Configured() {
		return "", ErrMissingCredentials
	}

	body, err := json.Marshal(runRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var out RunResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Success && len(out.Errors) > 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: out.Errors[0].Message}
	}
	if strings.TrimSpace(out.Result.Response) == "" {
		return "", ErrEmptyResponse
	}

	return out.Result.Response, nil
}
