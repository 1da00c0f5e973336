package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hexwar/internal/persist"
)

// StatusError is a non-success response from the persistence service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("persistence service: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("persistence service: %s: %s", http.StatusText(e.StatusCode), e.Message)
}

// Client is a persist.Service backed by a remote Server.
type Client struct {
	base  string
	http  *http.Client
	codec persist.Codec
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCodec selects the body encoding. The default is canonical JSON.
func WithCodec(codec persist.Codec) ClientOption {
	return func(c *Client) {
		c.codec = codec
	}
}

// NewClient creates a client for the service at base (e.g.
// "http://localhost:8080").
func NewClient(base string, opts ...ClientOption) *Client {
	c := &Client{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
		codec: persist.JSONCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PutBatch creates or updates b on the server.
func (c *Client) PutBatch(ctx context.Context, b persist.Batch) error {
	body, err := c.codec.Marshal(b)
	if err != nil {
		return err
	}
	u := c.batchesURL(b.Game) + "/" + strconv.FormatInt(b.Count, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", c.codec.ContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return readStatusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Batches fetches the game's batches with count >= from.
func (c *Client) Batches(ctx context.Context, game string, from int64) ([]persist.Batch, error) {
	u := c.batchesURL(game) + "?" + url.Values{"from": {strconv.FormatInt(from, 10)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", c.codec.ContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read batches: %w", err)
	}
	return persist.CodecFor(resp.Header.Get("Content-Type")).UnmarshalList(data)
}

func (c *Client) batchesURL(game string) string {
	return c.base + "/games/" + url.PathEscape(game) + "/batches"
}

func readStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
}
