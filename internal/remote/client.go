// Package remote wraps the paper API with stateless request helpers.
//
// Every method returns a result value with a Success flag instead of an
// error: the sync engine treats remote failure as an ordinary branch, not
// an exception path. Transport errors, non-2xx statuses, and undecodable
// bodies are all logged here and folded into Success=false. No retries
// happen at this layer; retry policy belongs to the sync engine and the
// daemon.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// DefaultTimeout bounds each request; the engine has no timeout of its
// own and relies on the request failing to fall back to local-only state.
const DefaultTimeout = 30 * time.Second

// Client is a stateless wrapper around the remote record store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token attached to every request. An empty
// token means anonymous access, which the server may or may not accept;
// it is not an error here.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithLogger substitutes the failure logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.New(os.Stderr, "[remote] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListResult is the outcome of List.
type ListResult struct {
	Success bool
	Papers  []*schema.Paper
}

// GetResult is the outcome of Get.
type GetResult struct {
	Success bool
	Paper   *schema.Paper
}

// SaveResult is the outcome of Create and Duplicate.
type SaveResult struct {
	Success bool
	PostID  string
}

// Result is the outcome of Update and Delete.
type Result struct {
	Success bool
}

// record is the wire form of a stored paper: the document travels whole
// under data, with title and page settings projected out for the server's
// listing views.
type record struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Data         *schema.Paper `json:"data"`
	PageSettings pageSettings  `json:"page_settings"`
}

type pageSettings struct {
	Size    string `json:"size"`
	Columns int    `json:"columns"`
}

// paper converts a wire record to a document carrying a confirmed id.
// Anything handed out by the server is by definition server-known.
func (r *record) paper() *schema.Paper {
	if r.Data == nil {
		return nil
	}
	p := r.Data
	p.ID = schema.ConfirmedID(r.ID)
	return p
}

func recordBody(p *schema.Paper) interface{} {
	return map[string]interface{}{
		"title": p.Title(),
		"data":  p,
		"page_settings": pageSettings{
			Size:    "A4",
			Columns: p.Setup.Columns,
		},
	}
}

// List fetches the full remote collection.
func (c *Client) List(ctx context.Context) ListResult {
	var resp struct {
		Papers []record `json:"papers"`
	}
	if err := c.do(ctx, http.MethodGet, "/papers", nil, &resp); err != nil {
		c.logger.Printf("list failed: %v", err)
		return ListResult{}
	}
	papers := make([]*schema.Paper, 0, len(resp.Papers))
	for i := range resp.Papers {
		if p := resp.Papers[i].paper(); p != nil {
			papers = append(papers, p)
		}
	}
	return ListResult{Success: true, Papers: papers}
}

// Get fetches a single paper by server id.
func (c *Client) Get(ctx context.Context, id string) GetResult {
	var resp struct {
		Paper record `json:"paper"`
	}
	if err := c.do(ctx, http.MethodGet, "/papers/"+id, nil, &resp); err != nil {
		c.logger.Printf("get %s failed: %v", id, err)
		return GetResult{}
	}
	p := resp.Paper.paper()
	if p == nil {
		c.logger.Printf("get %s: response carried no document", id)
		return GetResult{}
	}
	return GetResult{Success: true, Paper: p}
}

// Create stores a new paper and returns the server-assigned id.
func (c *Client) Create(ctx context.Context, p *schema.Paper) SaveResult {
	var resp struct {
		Success bool   `json:"success"`
		PostID  string `json:"post_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/papers", recordBody(p), &resp); err != nil {
		c.logger.Printf("create %s failed: %v", p.ID, err)
		return SaveResult{}
	}
	if !resp.Success || resp.PostID == "" {
		c.logger.Printf("create %s rejected by server", p.ID)
		return SaveResult{}
	}
	return SaveResult{Success: true, PostID: resp.PostID}
}

// Update replaces the stored document under its confirmed id.
func (c *Client) Update(ctx context.Context, p *schema.Paper) Result {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPut, "/papers/"+p.ID.Value, recordBody(p), &resp); err != nil {
		c.logger.Printf("update %s failed: %v", p.ID, err)
		return Result{}
	}
	if !resp.Success {
		c.logger.Printf("update %s rejected by server", p.ID)
		return Result{}
	}
	return Result{Success: true}
}

// Delete removes the stored paper by server id.
func (c *Client) Delete(ctx context.Context, id string) Result {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodDelete, "/papers/"+id, nil, &resp); err != nil {
		c.logger.Printf("delete %s failed: %v", id, err)
		return Result{}
	}
	if !resp.Success {
		c.logger.Printf("delete %s rejected by server", id)
		return Result{}
	}
	return Result{Success: true}
}

// Duplicate asks the server to copy a stored paper, returning the copy's
// server-assigned id.
func (c *Client) Duplicate(ctx context.Context, id string) SaveResult {
	var resp struct {
		Success bool   `json:"success"`
		PostID  string `json:"post_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/papers/"+id+"/duplicate", nil, &resp); err != nil {
		c.logger.Printf("duplicate %s failed: %v", id, err)
		return SaveResult{}
	}
	if !resp.Success || resp.PostID == "" {
		c.logger.Printf("duplicate %s rejected by server", id)
		return SaveResult{}
	}
	return SaveResult{Success: true, PostID: resp.PostID}
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
