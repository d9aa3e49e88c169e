package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Ingestor fetches the configured feed and returns the eligible items,
// oldest first. If a run is cut short, the oldest eligible items have
// already been attempted.
type Ingestor struct {
	httpClient *http.Client
	parser     *Parser
	feedURL    string
	userAgent  string
	maxAge     time.Duration
	timeout    time.Duration
}

func NewIngestor(httpClient *http.Client, parser *Parser, feedURL, userAgent string, maxAge, timeout time.Duration) *Ingestor {
	return &Ingestor{
		httpClient: httpClient,
		parser:     parser,
		feedURL:    feedURL,
		userAgent:  userAgent,
		maxAge:     maxAge,
		timeout:    timeout,
	}
}

// Run fetches and parses the feed, dropping items older than the age
// threshold. Items without a resolvable timestamp are kept rather than
// silently lost, and sort before everything else.
func (i *Ingestor) Run(ctx context.Context) ([]Item, error) {
	data, err := i.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	items, err := i.parser.Run(data)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-i.maxAge)
	eligible := make([]Item, 0, len(items))
	for _, item := range items {
		if item.PublishedAt.IsZero() || !item.PublishedAt.Before(cutoff) {
			eligible = append(eligible, item)
		}
	}

	sort.SliceStable(eligible, func(a, b int) bool {
		return eligible[a].PublishedAt.Before(eligible[b].PublishedAt)
	})

	return eligible, nil
}

func (i *Ingestor) fetchFeed(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", i.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
