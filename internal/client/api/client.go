// Package api is the HTTP client for the lifedash backend: credential
// service, owner-scoped resource endpoints, gallery upload presigning and
// AI suggestions. Failures map onto the sentinel errors in errors.go so the
// UI layer can choose wording without parsing messages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifedash/internal/client/session"
)

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a client for the backend at base, e.g.
// "http://127.0.0.1:8080".
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type authResponse struct {
	User    *session.User `json:"user"`
	Token   string        `json:"token"`
	Message string        `json:"message"`
}

// Login verifies credentials and returns the identity record. The issued
// access token is retained for authenticated endpoints.
func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Register creates an identity and behaves like Login on success.
func (c *Client) Register(ctx context.Context, email, password string) (*session.User, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*session.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: empty identity in response", ErrServerFault)
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// ListDocuments fetches the owner's collection, most recent first.
func (c *Client) ListDocuments(ctx context.Context, resource, ownerID string) ([]Document, error) {
	path := fmt.Sprintf("/%s?ownerId=%s", resource, url.QueryEscape(ownerID))
	var docs []Document
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument stores a new record for the owner and returns it with the
// server-assigned id and timestamp.
func (c *Client) CreateDocument(ctx context.Context, resource, ownerID string, fields map[string]any) (*Document, error) {
	doc := Document{OwnerID: ownerID, Fields: fields}
	var created Document
	if err := c.do(ctx, http.MethodPost, "/"+resource, doc, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDocument replaces the record's fields. A record belonging to a
// different owner reports ErrNotFound, same as a missing one.
func (c *Client) UpdateDocument(ctx context.Context, resource, id, ownerID string, fields map[string]any) (*Document, error) {
	doc := Document{OwnerID: ownerID, Fields: fields}
	var updated Document
	path := fmt.Sprintf("/%s/%s", resource, url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, doc, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDocument removes the owner's record.
func (c *Client) DeleteDocument(ctx context.Context, resource, id, ownerID string) error {
	path := fmt.Sprintf("/%s/%s?ownerId=%s", resource, url.PathEscape(id), url.QueryEscape(ownerID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type suggestRequest struct {
	ExistingEntries string `json:"existingEntries"`
	Type            string `json:"type"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest asks the backend for new-entry candidates based on the corpus of
// existing entries.
func (c *Client) Suggest(ctx context.Context, existingEntries, entryType string) ([]string, error) {
	var resp suggestResponse
	req := suggestRequest{ExistingEntries: existingEntries, Type: entryType}
	if err := c.do(ctx, http.MethodPost, "/suggest", req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// RequestUpload obtains a presigned PUT URL for a new gallery object.
func (c *Client) RequestUpload(ctx context.Context) (key, uploadURL string, err error) {
	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/gallery/uploads", nil, &resp); err != nil {
		return "", "", err
	}
	return resp.Key, resp.URL, nil
}

// ResolveUpload obtains a presigned GET URL for a stored gallery object.
func (c *Client) ResolveUpload(ctx context.Context, key string) (string, error) {
	var resp uploadResponse
	path := "/gallery/uploads/" + url.PathEscape(key)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Ping checks backend liveness.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: unreadable response: %v", ErrServerFault, err)
	}
	return nil
}

// statusError translates an HTTP failure into the client error taxonomy,
// keeping the server's message for display.
func statusError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = ErrValidation
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = ErrInvalidCredentials
	case resp.StatusCode == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrEmailTaken
	default:
		sentinel = ErrServerFault
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
