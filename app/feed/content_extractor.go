package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability"
)

// ContentExtractor fetches an item's linked article and extracts its readable
// text, giving the summarizer more to work with than the RSS description.
type ContentExtractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewContentExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *ContentExtractor {
	return &ContentExtractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *ContentExtractor) Extract(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("item has no link")
	}

	data, err := e.fetchArticle(ctx, link)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("failed to parse article URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"url", link,
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}

func (e *ContentExtractor) fetchArticle(ctx context.Context, link string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
