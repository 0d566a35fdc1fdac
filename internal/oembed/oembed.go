// Package oembed looks up best-effort video metadata from an
// oEmbed-compatible endpoint.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultEndpoint is the public noembed.com oEmbed proxy.
const DefaultEndpoint = "https://noembed.com/embed"

// VideoMetadata describes a video. It is immutable once fetched.
type VideoMetadata struct {
	Title        string `json:"title" yaml:"title"`
	AuthorName   string `json:"author_name" yaml:"author"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail,omitempty"`
}

// response is the subset of the oEmbed payload we read.
type response struct {
	VideoMetadata
	Error string `json:"error"`
}

// Client fetches metadata from an oEmbed endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a Client for endpoint. An empty endpoint uses DefaultEndpoint
// and a nil httpClient uses http.DefaultClient.
func New(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Normalize rewrites mobile YouTube links to the canonical domain.
func Normalize(videoURL string) string {
	return strings.Replace(videoURL, "m.youtube.com", "www.youtube.com", 1)
}

// Fetch returns the metadata for videoURL, or nil when it cannot be
// determined. Failures are logged and never returned.
func (c *Client) Fetch(ctx context.Context, videoURL string) *VideoMetadata {
	meta, err := c.fetch(ctx, Normalize(videoURL))
	if err != nil {
		log.Debug("metadata lookup failed", "url", videoURL, "error", err)
		return nil
	}
	log.Debug("metadata lookup", "title", meta.Title, "author", meta.AuthorName)
	return meta
}

func (c *Client) fetch(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	u := c.endpoint + "?url=" + url.QueryEscape(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get url: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("endpoint error: %s", r.Error)
	}
	if r.Title == "" {
		return nil, fmt.Errorf("response has no title")
	}

	meta := r.VideoMetadata
	return &meta, nil
}
