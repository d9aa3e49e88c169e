package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultPDS = "https://bsky.social"

// Client is a minimal Bluesky/AT Protocol API client for creating feed posts.
// One instance is shared by overlapping pipeline runs, so session state is
// guarded; a concurrent double login is harmless, the later session wins.
type Client struct {
	pds        string
	httpClient *http.Client

	// mu guards the session fields populated by Login
	mu        sync.RWMutex
	accessJwt string
	did       string
}

// NewClient creates a new Bluesky API client. If pds is empty, it defaults to
// https://bsky.social.
func NewClient(pds string) *Client {
	if pds == "" {
		pds = defaultPDS
	}
	return &Client{
		pds: pds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login authenticates with the PDS and stores the session token. Use an App
// Password, not the account password.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var resp createSessionResponse
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", "", body, &resp); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessJwt = resp.AccessJwt
	c.did = resp.DID
	c.mu.Unlock()
	return nil
}

// session returns the current token and repo DID.
func (c *Client) session() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessJwt, c.did
}

// Authenticated reports whether a session token is held.
func (c *Client) Authenticated() bool {
	jwt, _ := c.session()
	return jwt != ""
}

// Post is the visible text plus the link card of one feed post.
type Post struct {
	Text      string
	LinkURI   string
	LinkTitle string
}

// CreatePost creates an app.bsky.feed.post record with an external-link embed
// card and returns the backend-assigned AT-URI of the new post.
func (c *Client) CreatePost(ctx context.Context, post Post) (string, error) {
	jwt, did := c.session()
	if jwt == "" {
		return "", &PublishError{Kind: KindAuth, Message: "not authenticated: call Login first"}
	}

	record := postRecord{
		Type:      "app.bsky.feed.post",
		Text:      post.Text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if post.LinkURI != "" {
		record.Embed = &externalEmbed{
			Type: "app.bsky.embed.external",
			External: externalData{
				URI:         post.LinkURI,
				Title:       post.LinkTitle,
				Description: "",
			},
		}
	}

	body := createRecordRequest{
		Repo:       did,
		Collection: "app.bsky.feed.post",
		Record:     record,
	}

	var resp createRecordResponse
	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", jwt, body, &resp); err != nil {
		return "", err
	}
	if resp.URI == "" {
		return "", &PublishError{Kind: KindValidation, Message: "backend returned no post URI"}
	}

	return resp.URI, nil
}

func (c *Client) post(ctx context.Context, path, token string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &PublishError{Kind: KindValidation, Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pds+path, bytes.NewReader(payload))
	if err != nil {
		return &PublishError{Kind: KindTransport, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PublishError{Kind: KindTransport, Message: "send request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PublishError{Kind: KindTransport, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PublishError{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &PublishError{Kind: KindTransport, Message: fmt.Sprintf("unmarshal response from %s", path), Err: err}
		}
	}

	return nil
}

type createSessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

type postRecord struct {
	Type      string         `json:"$type"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"createdAt"`
	Embed     *externalEmbed `json:"embed,omitempty"`
}

type externalEmbed struct {
	Type     string       `json:"$type"`
	External externalData `json:"external"`
}

type externalData struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type createRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Record     any    `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}
