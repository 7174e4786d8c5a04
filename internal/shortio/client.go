// Package shortio provides a minimal client for the Short.io REST API.
package shortio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Short.io API endpoint.
const DefaultBaseURL = "https://api.short.io"

// Client talks to the Short.io API with a shared rate limiter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Short.io client.
func NewClient(apiKey string, timeout time.Duration, rateLimitRPS float64) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if rateLimitRPS == 0 {
		rateLimitRPS = 5.0
	}

	return &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rateLimitRPS), int(rateLimitRPS)+1),
	}
}

// Close closes the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func decodeOrError(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("short.io returned status %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListDomains returns all short domains registered on the account.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/domains", nil)
	if err != nil {
		return nil, err
	}

	var domains []Domain
	if err := decodeOrError(resp, &domains); err != nil {
		return nil, err
	}

	log.Debug().Int("domains", len(domains)).Msg("Listed short domains")
	return domains, nil
}

// ListLinks returns one page of links for a domain. Pass the previous
// page's NextPageToken to continue; an empty token starts from the top.
func (c *Client) ListLinks(ctx context.Context, domainID int64, limit int, pageToken string) (LinkPage, error) {
	q := url.Values{}
	q.Set("domain_id", strconv.FormatInt(domainID, 10))
	q.Set("limit", strconv.Itoa(limit))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	resp, err := c.request(ctx, http.MethodGet, "/api/links?"+q.Encode(), nil)
	if err != nil {
		return LinkPage{}, err
	}

	var page LinkPage
	if err := decodeOrError(resp, &page); err != nil {
		return LinkPage{}, err
	}
	return page, nil
}

// CreateLink creates a new short link.
func (c *Client) CreateLink(ctx context.Context, spec LinkSpec) (Link, error) {
	resp, err := c.request(ctx, http.MethodPost, "/links", spec)
	if err != nil {
		return Link{}, err
	}

	var link Link
	if err := decodeOrError(resp, &link); err != nil {
		return Link{}, err
	}

	log.Debug().Str("id", link.IDString).Str("path", link.Path).Msg("Link created")
	return link, nil
}

// UpdateLink updates an existing link by its id.
func (c *Client) UpdateLink(ctx context.Context, linkID string, spec LinkSpec) (Link, error) {
	resp, err := c.request(ctx, http.MethodPost, "/links/"+linkID, spec)
	if err != nil {
		return Link{}, err
	}

	var link Link
	if err := decodeOrError(resp, &link); err != nil {
		return Link{}, err
	}
	return link, nil
}

// DeleteLink deletes a link by its id.
func (c *Client) DeleteLink(ctx context.Context, linkID string) error {
	resp, err := c.request(ctx, http.MethodDelete, "/links/"+linkID, nil)
	if err != nil {
		return err
	}
	return decodeOrError(resp, nil)
}
