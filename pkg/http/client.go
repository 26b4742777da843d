package http

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
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{}
}

// Client is a resilient HTTP client. Every call carries a hard deadline,
// and calls that fail with a geo-block status (403/451) or a transport
// error are retried against the host's configured alternate base URLs in
// order. Ordinary 4xx/5xx responses are returned as-is; the failover path
// exists for blocked regions and dead edges, not application errors.
type Client struct {
	timeout  time.Duration
	failover map[string][]string // host -> alternate base URLs, tried in order
	client   *http.Client
}

// NewClient creates a new resilient HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:  10 * time.Second,
		failover: make(map[string][]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Timeout is enforced per attempt via context; the transport-level
	// timeout is a backstop only.
	c.client = &http.Client{Timeout: c.timeout + time.Second}
	return c
}

// Do sends the request and applies domain failover. The returned response
// is the first successful one; if the primary and every alternate fail,
// the primary's error (or response) is propagated unchanged.
func (c *Client) Do(ctx context.Context, opts *RequestOptions) (*http.Response, error) {
	resp, err := c.attempt(ctx, opts.URL, opts)
	if !needsFailover(resp, err) {
		return resp, err
	}

	primary, perr := url.Parse(opts.URL)
	if perr != nil {
		return resp, err
	}

	for _, alt := range c.failover[primary.Host] {
		altURL, aerr := rebase(primary, alt)
		if aerr != nil {
			continue
		}
		altResp, altErr := c.attempt(ctx, altURL, opts)
		if altErr == nil && altResp.StatusCode >= 200 && altResp.StatusCode < 300 {
			if resp != nil {
				drain(resp)
			}
			return altResp, nil
		}
		if altResp != nil {
			drain(altResp)
		}
	}

	// All alternates failed: the caller sees the original outcome.
	return resp, err
}

// DoJSON sends the request and decodes a 2xx JSON response into dest.
func (c *Client) DoJSON(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if dest == nil {
		return nil
	}

	switch v := dest.(type) {
	case *[]byte:
		body, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return fmt.Errorf("read body: %w", rerr)
		}
		*v = body
	default:
		if derr := json.NewDecoder(resp.Body).Decode(dest); derr != nil {
			return fmt.Errorf("decode json: %w", derr)
		}
	}

	return nil
}

func (c *Client) attempt(ctx context.Context, rawURL string, opts *RequestOptions) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := c.buildRequest(attemptCtx, rawURL, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// The deadline must outlive body consumption; tie cancel to Close.
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, rawURL string, opts *RequestOptions) (*http.Request, error) {
	body, err := requestBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, rawURL, body)
	if err != nil {
		return nil, err
	}

	if len(opts.QueryParams) > 0 {
		q := req.URL.Query()
		for key, values := range opts.QueryParams {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func requestBody(v interface{}) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		jsonBody, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return bytes.NewReader(jsonBody), nil
	}
}

// needsFailover reports whether the outcome is in the geo-block/network
// class. Application-level 4xx/5xx never trigger failover.
func needsFailover(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusUnavailableForLegalReasons
}

// rebase keeps the original path and query but swaps in the alternate base.
func rebase(primary *url.URL, altBase string) (string, error) {
	alt, err := url.Parse(altBase)
	if err != nil || alt.Host == "" {
		return "", fmt.Errorf("bad alternate base %q", altBase)
	}
	out := *primary
	out.Scheme = alt.Scheme
	out.Host = alt.Host
	if alt.Path != "" && alt.Path != "/" {
		out.Path = strings.TrimSuffix(alt.Path, "/") + primary.Path
	}
	return out.String(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithFailover registers alternate base URLs for a host, tried in order
// when the primary is geo-blocked or unreachable.
func WithFailover(host string, alternates ...string) ClientOption {
	return func(c *Client) {
		c.failover[host] = append(c.failover[host], alternates...)
	}
}

// WithFailoverTable registers a whole host -> alternates table.
func WithFailoverTable(table map[string][]string) ClientOption {
	return func(c *Client) {
		for host, alts := range table {
			c.failover[host] = append(c.failover[host], alts...)
		}
	}
}
