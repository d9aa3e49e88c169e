package bluesky

import (
	"context"
	"log/slog"

	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
	"github.com/anoopengineer/rss-bluesky-bridge/app/secrets"
	"github.com/anoopengineer/rss-bluesky-bridge/app/textutil"
)

// Publisher formats a feed item into a post with a link card and submits it.
// It re-checks the dedup store before posting as a defensive guard: a record
// already marked published means a prior run finished the work and its post
// ref is returned as-is.
type Publisher struct {
	client       *Client
	creds        *secrets.Provider
	store        database.SeenItemStore
	maxGraphemes int
}

func NewPublisher(client *Client, creds *secrets.Provider, store database.SeenItemStore, maxGraphemes int) *Publisher {
	return &Publisher{
		client:       client,
		creds:        creds,
		store:        store,
		maxGraphemes: maxGraphemes,
	}
}

// Publish posts the item with the given (possibly enriched) text and returns
// the backend-assigned post ref. Any failure comes back as a *PublishError.
func (p *Publisher) Publish(ctx context.Context, item feed.Item, text string) (string, error) {
	record, err := p.store.GetRecord(item.Identity)
	if err != nil {
		// The guard is best-effort; TryClaim already provided correctness.
		slog.Warn("Dedup store pre-publish check failed", "identity", item.Identity, "error", err)
	} else if record != nil && record.Status == database.StatusPublished && record.PostRef != "" {
		slog.Info("Item already published, skipping post", "identity", item.Identity, "post_ref", record.PostRef)
		return record.PostRef, nil
	}

	if !p.client.Authenticated() {
		creds, err := p.creds.Get()
		if err != nil {
			return "", &PublishError{Kind: KindAuth, Message: "failed to resolve credentials", Err: err}
		}
		if err := p.client.Login(ctx, creds.Username, creds.Password); err != nil {
			return "", err
		}
	}

	post := Post{
		Text:      textutil.TruncateToWord(text, p.maxGraphemes),
		LinkURI:   item.Link,
		LinkTitle: item.Title,
	}

	uri, err := p.client.CreatePost(ctx, post)
	if err != nil {
		return "", err
	}

	slog.Info("Posted item", "identity", item.Identity, "post_ref", uri)
	return uri, nil
}
