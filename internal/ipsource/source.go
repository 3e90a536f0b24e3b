// Package ipsource discovers the public address a DDNS record should point to.
package ipsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
)

// Source kinds accepted by New.
const (
	KindHTTP = "http"
	KindDNS  = "dns"
)

var (
	// ErrUnsupportedType is returned for record types that carry no address.
	ErrUnsupportedType = errors.New("record type has no address lookup")

	// ErrInvalidAddress is returned when a lookup yields something that is not
	// an address of the requested family.
	ErrInvalidAddress = errors.New("invalid address")
)

// Source looks up the current public address for a record type (A or AAAA).
type Source interface {
	Name() string
	Lookup(ctx context.Context, recordType string) (string, error)
}

// Config selects and configures a Source.
type Config struct {
	Kind string

	// HTTP echo service URLs.
	URL4 string
	URL6 string

	// DNS resolvers (host:port) answering myip.opendns.com.
	Server4 string
	Server6 string

	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New builds the Source named by cfg.Kind.
func New(cfg Config) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", KindHTTP:
		return NewHTTPSource(cfg.HTTPClient, cfg.URL4, cfg.URL6, cfg.Logger), nil
	case KindDNS:
		return NewDNSSource(cfg.Server4, cfg.Server6, cfg.Timeout, cfg.Logger), nil
	default:
		return nil, fmt.Errorf("unknown address source %q (expected %s or %s)", cfg.Kind, KindHTTP, KindDNS)
	}
}

// ParseAddress validates that s is an address matching recordType and
// returns its canonical text form.
func ParseAddress(recordType, s string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr = addr.Unmap()

	switch strings.ToUpper(recordType) {
	case "A":
		if !addr.Is4() {
			return "", fmt.Errorf("%w: %s is not IPv4", ErrInvalidAddress, addr)
		}
	case "AAAA":
		if !addr.Is6() {
			return "", fmt.Errorf("%w: %s is not IPv6", ErrInvalidAddress, addr)
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, recordType)
	}
	return addr.String(), nil
}

// observe records a lookup in the address lookup counter.
func observe(source string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.AddressLookupsTotal.WithLabelValues(source, status).Inc()
}

// Static always returns a fixed value.
type Static struct {
	Value string
}

// Name implements Source.
func (s Static) Name() string { return "static" }

// Lookup implements Source. Address types are validated; other types
// (CNAME, TXT) return the value unchanged.
func (s Static) Lookup(_ context.Context, recordType string) (string, error) {
	switch strings.ToUpper(recordType) {
	case "A", "AAAA":
		return ParseAddress(recordType, s.Value)
	}
	if s.Value == "" {
		return "", fmt.Errorf("no value configured for %s record", recordType)
	}
	return s.Value, nil
}
