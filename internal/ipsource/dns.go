package ipsource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// OpenDNS answers queries for this name with the client's address.
const (
	MyIPName       = "myip.opendns.com."
	DefaultServer4 = "208.67.222.222:53"
	DefaultServer6 = "[2620:119:35::35]:53"
	defaultTimeout = 5 * time.Second
)

// DNSSource queries a resolver that reflects the client's address.
type DNSSource struct {
	client  *dns.Client
	server4 string
	server6 string
	name    string
	logger  *slog.Logger
}

// NewDNSSource creates a DNS source. Empty servers fall back to OpenDNS.
func NewDNSSource(server4, server6 string, timeout time.Duration, logger *slog.Logger) *DNSSource {
	if server4 == "" {
		server4 = DefaultServer4
	}
	if server6 == "" {
		server6 = DefaultServer6
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DNSSource{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		server4: server4,
		server6: server6,
		name:    MyIPName,
		logger:  logger,
	}
}

// Name implements Source.
func (s *DNSSource) Name() string { return KindDNS }

// Lookup implements Source.
func (s *DNSSource) Lookup(ctx context.Context, recordType string) (addr string, err error) {
	defer func() { observe(KindDNS, err) }()

	var (
		qtype  uint16
		server string
	)
	switch strings.ToUpper(recordType) {
	case "A":
		qtype, server = dns.TypeA, s.server4
	case "AAAA":
		qtype, server = dns.TypeAAAA, s.server6
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, recordType)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(s.name, qtype)
	msg.RecursionDesired = false

	resp, rtt, err := s.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return "", fmt.Errorf("querying %s for %s: %w", server, s.name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("querying %s for %s: %s", server, s.name, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			if qtype == dns.TypeA {
				addr, err = ParseAddress(recordType, v.A.String())
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				addr, err = ParseAddress(recordType, v.AAAA.String())
			}
		}
		if addr != "" || err != nil {
			break
		}
	}
	if err != nil {
		return "", err
	}
	if addr == "" {
		return "", fmt.Errorf("%w: no %s answer from %s", ErrInvalidAddress, recordType, server)
	}

	s.logger.Debug("discovered public address",
		slog.String("source", KindDNS),
		slog.String("server", server),
		slog.String("address", addr),
		slog.Duration("rtt", rtt),
	)

	return addr, nil
}
