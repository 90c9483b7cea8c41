package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is one {role, content} pair of the transcript sent to the gateway.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Factlet is a ranked memory entry injected as extra context.
type Factlet struct {
	Factlet      string `json:"factlet"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// RosterEntry describes a colleague for the organization context block.
type RosterEntry struct {
	Name           string `json:"name"`
	Expertise      string `json:"expertise"`
	Level          string `json:"level"`
	Role           string `json:"role"`
	HasOfferLetter bool   `json:"has_offer_letter,omitempty"`
}

// ChatRequest is the body for the default gateway route.
type ChatRequest struct {
	Messages      []Message      `json:"messages"`
	Expertise     string         `json:"expertise,omitempty"`
	Memory        []Factlet      `json:"memory,omitempty"`
	Employees     []RosterEntry  `json:"employees,omitempty"`
	CompanyInfo   map[string]any `json:"companyInfo,omitempty"`
	GenerateImage bool           `json:"generateImage,omitempty"`
}

// OpenAIRequest is the body for the alternate gateway route.
type OpenAIRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	UseStream   bool      `json:"useStream"`
}

// StatusError reports a non-2xx gateway response. Partial assistant content
// is never persisted when one is returned.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.Code, e.Body)
}

// Client calls the two gateway routes. Which one a chat uses is decided by
// the stored per-user provider preference, not by the caller at each site.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// StreamChat posts to the default route and returns the raw event stream.
// The caller owns the returned body and must close it.
func (c *Client) StreamChat(ctx context.Context, authToken string, req ChatRequest) (io.ReadCloser, error) {
	return c.post(ctx, c.baseURL+"/chat", authToken, req)
}

// StreamOpenAI posts to the alternate route with useStream=true and returns
// the raw passthrough stream.
func (c *Client) StreamOpenAI(ctx context.Context, authToken string, req OpenAIRequest) (io.ReadCloser, error) {
	req.UseStream = true
	return c.post(ctx, c.baseURL+"/openai", authToken, req)
}

// Complete posts to the alternate route with useStream=false and returns the
// whole reply as one string.
func (c *Client) Complete(ctx context.Context, authToken string, req OpenAIRequest) (string, error) {
	req.UseStream = false
	body, err := c.post(ctx, c.baseURL+"/openai", authToken, req)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var result struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Content, nil
}

func (c *Client) post(ctx context.Context, url, authToken string, payload any) (io.ReadCloser, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway call: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	return resp.Body, nil
}
