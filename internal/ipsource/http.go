package ipsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gitlab.bluewillows.net/root/hwddns/pkg/httputil"
)

// Default echo services returning the caller's address as plain text.
const (
	DefaultURL4 = "https://api.ipify.org"
	DefaultURL6 = "https://api6.ipify.org"
)

// maxBodySize bounds how much of an echo response is read.
const maxBodySize = 256

// HTTPSource asks a plain-text echo service for the caller's address.
type HTTPSource struct {
	client *http.Client
	url4   string
	url6   string
	logger *slog.Logger
}

// NewHTTPSource creates an HTTP source. Empty URLs fall back to ipify.
func NewHTTPSource(client *http.Client, url4, url6 string, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = httputil.DefaultClient()
	}
	if url4 == "" {
		url4 = DefaultURL4
	}
	if url6 == "" {
		url6 = DefaultURL6
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{client: client, url4: url4, url6: url6, logger: logger}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return KindHTTP }

// Lookup implements Source.
func (s *HTTPSource) Lookup(ctx context.Context, recordType string) (addr string, err error) {
	defer func() { observe(KindHTTP, err) }()

	var target string
	switch strings.ToUpper(recordType) {
	case "A":
		target = s.url4
	case "AAAA":
		target = s.url6
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, recordType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", target, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("querying %s: status %d: %s", target, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	addr, err = ParseAddress(recordType, string(body))
	if err != nil {
		return "", fmt.Errorf("response from %s: %w", target, err)
	}

	s.logger.Debug("discovered public address",
		slog.String("source", KindHTTP),
		slog.String("url", target),
		slog.String("address", addr),
	)

	return addr, nil
}
