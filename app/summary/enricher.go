package summary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
	"github.com/anoopengineer/rss-bluesky-bridge/app/textutil"
)

// Summarizer produces a shortened rendition of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxGraphemes int) (string, error)
}

// Enricher is the optional summarization stage. It never fails an item: when
// the backend errors or times out, the item's own text is truncated and used
// instead, and when summarization is disabled the stage is a pass-through
// that still applies the length cap.
type Enricher struct {
	summarizer   Summarizer
	extractor    *feed.ContentExtractor
	enabled      bool
	maxGraphemes int
}

// NewEnricher creates the enrichment stage. summarizer may be nil when
// enabled is false; extractor is optional.
func NewEnricher(summarizer Summarizer, extractor *feed.ContentExtractor, enabled bool, maxGraphemes int) *Enricher {
	return &Enricher{
		summarizer:   summarizer,
		extractor:    extractor,
		enabled:      enabled,
		maxGraphemes: maxGraphemes,
	}
}

// Enrich returns the text to post for the item, always within the configured
// grapheme budget.
func (e *Enricher) Enrich(ctx context.Context, item feed.Item) string {
	body := item.Body()

	if e.extractor != nil && item.Link != "" {
		if extracted, err := e.extractor.Extract(ctx, item.Link); err != nil {
			slog.Warn("Article content extraction failed, using feed text", "identity", item.Identity, "error", err)
		} else {
			body = extracted
		}
	}

	if !e.enabled || e.summarizer == nil {
		return textutil.TruncateToWord(body, e.maxGraphemes)
	}

	generated, err := e.summarizer.Summarize(ctx, body, e.maxGraphemes)
	if err != nil {
		slog.Warn("AI summarization failed, falling back to item text", "identity", item.Identity, "error", err)
		return textutil.TruncateToWord(body, e.maxGraphemes)
	}
	if strings.TrimSpace(generated) == "" {
		slog.Warn("AI summarization returned empty text, falling back to item text", "identity", item.Identity)
		return textutil.TruncateToWord(body, e.maxGraphemes)
	}

	return textutil.TruncateToWord(generated, e.maxGraphemes)
}
