package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls an Anthropic-messages-style summarization API.
type Client struct {
	endpoint   string
	modelID    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, modelID, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		modelID:  modelID,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Summarize asks the model to strip markup and shorten text to at most
// maxGraphemes user-perceived characters. The model is not trusted to respect
// the limit; callers re-apply the cap to whatever comes back.
func (c *Client) Summarize(ctx context.Context, text string, maxGraphemes int) (string, error) {
	prompt := fmt.Sprintf("Remove all html tags and summarize the following text in %d graphemes or less:\n\n%s", maxGraphemes, text)

	body := messagesRequest{
		Model:            c.modelID,
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        300,
		Temperature:      0,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{Type: "text", Text: prompt},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call summarization API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result messagesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Content) == 0 || result.Content[0].Text == "" {
		return "", fmt.Errorf("no summary generated")
	}

	return result.Content[0].Text, nil
}

type messagesRequest struct {
	Model            string    `json:"model"`
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}
