package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request; GitHub rejects requests without one.
	DefaultUserAgent = "geojsonio"

	apiVersion = "2022-11-28"
	mediaType  = "application/vnd.github+json"
)

// Client is a GitHub Gists API client.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API URL, e.g. a GitHub Enterprise instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithToken sets the token sent as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Gists client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type file struct {
	Filename  string `json:"filename,omitempty"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

type createRequest struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]file `json:"files"`
}

type gistResponse struct {
	ID      string          `json:"id"`
	HTMLURL string          `json:"html_url"`
	Files   map[string]file `json:"files"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Create stores content as a public gist with a single file and returns the gist id.
func (c *Client) Create(ctx context.Context, filename, description, content string) (string, error) {
	if content == "" {
		return "", &Error{Code: ErrEmptyContent, Message: "content cannot be empty"}
	}
	if filename == "" {
		return "", &Error{Code: ErrBadRequest, Message: "filename cannot be empty"}
	}

	payload, err := json.Marshal(createRequest{
		Description: description,
		Public:      true,
		Files:       map[string]file{filename: {Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/gists", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", statusError(resp, body)
	}

	var g gistResponse
	if err := json.Unmarshal(body, &g); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if g.ID == "" {
		return "", &Error{Code: ErrServer, Status: resp.StatusCode, Message: "response has no gist id"}
	}
	return g.ID, nil
}

// Get retrieves the files of a gist, keyed by filename.
// The identifier can be either a gist URL (https://gist.github.com/user/abc123) or just the ID (abc123).
func (c *Client) Get(ctx context.Context, identifier string) (map[string]string, error) {
	id, err := parseID(identifier)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/gists/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	body, resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, body)
	}

	var g gistResponse
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	files := make(map[string]string, len(g.Files))
	for name, f := range g.Files {
		content := f.Content
		if f.Truncated && f.RawURL != "" {
			content, err = c.raw(ctx, f.RawURL)
			if err != nil {
				return nil, fmt.Errorf("fetching %s: %w", name, err)
			}
		}
		files[name] = content
	}
	return files, nil
}

func (c *Client) raw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	body, resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, body)
	}
	return string(body), nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return body, resp, nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Message != "" {
		msg = er.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &Error{Code: ErrUnauthorized, Status: resp.StatusCode, Message: msg}
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.StatusCode == http.StatusTooManyRequests || resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return &Error{Code: ErrRateLimited, Status: resp.StatusCode, Message: msg}
		}
		return &Error{Code: ErrUnauthorized, Status: resp.StatusCode, Message: msg}
	case http.StatusNotFound:
		return &Error{Code: ErrNotFound, Status: resp.StatusCode, Message: "gist not found"}
	case http.StatusUnprocessableEntity:
		return &Error{Code: ErrValidation, Status: resp.StatusCode, Message: msg}
	case http.StatusBadRequest:
		return &Error{Code: ErrBadRequest, Status: resp.StatusCode, Message: msg}
	default:
		return &Error{Code: ErrServer, Status: resp.StatusCode, Message: fmt.Sprintf("unexpected status: %s", msg)}
	}
}

// parseID extracts a gist id from a bare id or a gist URL.
func parseID(identifier string) (string, error) {
	id := identifier
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		parsed, err := url.Parse(identifier)
		if err != nil {
			return "", fmt.Errorf("parsing URL: %w", err)
		}
		path := strings.Trim(parsed.Path, "/")
		id = path[strings.LastIndex(path, "/")+1:]
	}
	id = strings.TrimPrefix(id, "/")

	if id == "" {
		return "", &Error{Code: ErrBadRequest, Message: "identifier cannot be empty"}
	}
	return id, nil
}
