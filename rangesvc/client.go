package rangesvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hupe1980/digitstream"
)

// Client consumes the HTTP range endpoint as a digitstream.Fetcher.
//
// Network failures and 5xx responses are reported as transient; 404 maps to
// digitstream.ErrNotFound and 400 to digitstream.ErrInvalidRange, so the
// stream's retry policy applies unchanged across the wire.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (e.g. with a custom
// transport). The default is http.DefaultClient; per-fetch timeouts come
// from the stream's fetch context.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// NewClient creates a fetcher reading from the range endpoint at the given
// URL.
func NewClient(endpoint string, optFns ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(c)
		}
	}
	return c
}

// Fetch implements digitstream.Fetcher.
func (c *Client) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || length <= 0 {
		return nil, digitstream.ErrInvalidRange
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("start", strconv.FormatInt(offset, 10))
	q.Set("length", strconv.FormatInt(length, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, digitstream.NewTransientError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, digitstream.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, digitstream.ErrInvalidRange
	default:
		return nil, digitstream.NewTransientError(fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, length))
	if err != nil {
		return nil, digitstream.NewTransientError(err)
	}
	return data, nil
}
