// Package huaweicloud implements a signed client for the Huawei Cloud DNS API.
package huaweicloud

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
	"gitlab.bluewillows.net/root/hwddns/pkg/httputil"
)

const (
	// DefaultHost is the public Huawei Cloud DNS API endpoint.
	DefaultHost = "dns.myhuaweicloud.com"

	// DefaultScheme is used for every API request.
	DefaultScheme = "https"

	// MaxPageSize is the largest limit the list endpoints accept.
	// Larger result sets are truncated.
	MaxPageSize = 500
)

// Client is a Huawei Cloud DNS API client.
type Client struct {
	scheme    string
	host      string
	signer    *Signer
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithTransport replaces the HTTP transport (useful for testing).
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithHTTPClient sends requests through a custom *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.transport = NewHTTPTransport(httpClient)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHost sets a custom API host, e.g. a regional endpoint.
func WithHost(host string) ClientOption {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithScheme overrides the URL scheme (useful for testing against plain HTTP).
func WithScheme(scheme string) ClientOption {
	return func(c *Client) {
		if scheme != "" {
			c.scheme = scheme
		}
	}
}

// WithClock sets the time source used for X-Sdk-Date.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a new API client. The signer is bound to the final host.
func NewClient(creds Credentials, opts ...ClientOption) *Client {
	c := &Client{
		scheme: DefaultScheme,
		host:   DefaultHost,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(httputil.DefaultClient())
	}
	c.signer = NewSigner(creds, c.host)

	return c
}

// Host returns the API host requests are signed for.
func (c *Client) Host() string {
	return c.host
}

// do signs and sends one request, decoding a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveAPIRequest(operation, start, err)
	}()

	var body []byte
	if in != nil {
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	req := &Request{Method: method, Path: path, Query: query, Body: body}
	headers, err := c.signer.Sign(req, c.now())
	if err != nil {
		return err
	}

	reqURL := c.scheme + "://" + c.host + path
	if q := CanonicalQuery(query); q != "" {
		reqURL += "?" + q
	}

	c.logger.Debug("making API request",
		slog.String("operation", operation),
		slog.String("method", method),
		slog.String("path", path),
	)

	status, respBody, err := c.transport.Send(ctx, method, reqURL, body, headers)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		c.logger.Warn("API request failed",
			slog.String("operation", operation),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("body", string(respBody)),
		)
		return &APIError{Method: method, Path: path, StatusCode: status, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing %s response: %w", operation, err)
		}
	}

	return nil
}

// Ping checks that the API accepts our signature.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.ListZones(ctx, "", 1); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ListZones returns public zones whose name matches name (provider-side fuzzy match).
func (c *Client) ListZones(ctx context.Context, name string, limit int) ([]Zone, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageLimit(limit)))
	if name != "" {
		query.Set("name", name)
	}

	var resp zonesResponse
	if err := c.do(ctx, "list_zones", http.MethodGet, "/v2/zones", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}

	c.logger.Debug("listed zones",
		slog.String("name", name),
		slog.Int("count", len(resp.Zones)),
	)

	return resp.Zones, nil
}

// ListRecordSets returns one page of record sets in zoneID matching q.
func (c *Client) ListRecordSets(ctx context.Context, zoneID string, q RecordSetQuery) (*RecordSetList, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageLimit(q.Limit)))
	if q.Name != "" {
		query.Set("name", q.Name)
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}

	var resp RecordSetList
	path := "/v2/zones/" + url.PathEscape(zoneID) + "/recordsets"
	if err := c.do(ctx, "list_recordsets", http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing record sets: %w", err)
	}

	c.logger.Debug("listed record sets",
		slog.String("zone_id", zoneID),
		slog.String("name", q.Name),
		slog.String("type", q.Type),
		slog.Int("count", len(resp.RecordSets)),
	)

	return &resp, nil
}

// CreateRecordSet creates a record set and returns the provider's copy.
func (c *Client) CreateRecordSet(ctx context.Context, zoneID string, body RecordSetRequest) (*RecordSet, error) {
	var created RecordSet
	path := "/v2/zones/" + url.PathEscape(zoneID) + "/recordsets"
	if err := c.do(ctx, "create_recordset", http.MethodPost, path, nil, body, &created); err != nil {
		return nil, fmt.Errorf("creating record set: %w", err)
	}

	c.logger.Info("created record set",
		slog.String("zone_id", zoneID),
		slog.String("record_id", created.ID),
		slog.String("name", body.Name),
		slog.String("type", body.Type),
		slog.Any("records", body.Records),
	)

	return &created, nil
}

// UpdateRecordSet replaces the values of an existing record set.
func (c *Client) UpdateRecordSet(ctx context.Context, zoneID, recordID string, body RecordSetRequest) (*RecordSet, error) {
	var updated RecordSet
	path := "/v2/zones/" + url.PathEscape(zoneID) + "/recordsets/" + url.PathEscape(recordID)
	if err := c.do(ctx, "update_recordset", http.MethodPut, path, nil, body, &updated); err != nil {
		return nil, fmt.Errorf("updating record set %s: %w", recordID, err)
	}

	c.logger.Info("updated record set",
		slog.String("zone_id", zoneID),
		slog.String("record_id", recordID),
		slog.String("name", body.Name),
		slog.String("type", body.Type),
		slog.Any("records", body.Records),
	)

	return &updated, nil
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
