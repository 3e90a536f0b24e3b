package config

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"

	"gitlab.bluewillows.net/root/hwddns/pkg/httputil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// IsValidationError returns true if err is a configuration error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNoDomains is returned by RequireDomains when nothing is configured.
var ErrNoDomains = errors.New("no domains configured (set " + EnvPrefix + "DOMAINS or domains in the config file)")

// RequireDomains fails when no domain is configured.
func (c *Config) RequireDomains() error {
	if len(c.Domains) == 0 {
		return ErrNoDomains
	}
	return nil
}

// validateConfig performs field and cross-field validation on the resolved
// configuration. Returns a list of validation errors.
func validateConfig(cfg *Config) []string {
	var errs []string

	if cfg.AccessKey == "" {
		errs = append(errs, EnvPrefix+"ACCESS_KEY: required")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, EnvPrefix+"SECRET_KEY: required")
	}

	if cfg.Endpoint == "" || strings.Contains(cfg.Endpoint, "/") {
		errs = append(errs, fmt.Sprintf("%sENDPOINT: must be a host name without scheme or path, got %q", EnvPrefix, cfg.Endpoint))
	}
	if cfg.Proxy != "" {
		if _, err := httputil.ParseProxy(cfg.Proxy); err != nil {
			errs = append(errs, fmt.Sprintf("%sPROXY: %v", EnvPrefix, err))
		}
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, EnvPrefix+"TIMEOUT: must be positive")
	}

	if cfg.TTL < 0 || cfg.TTL > math.MaxInt32 {
		errs = append(errs, fmt.Sprintf("%sTTL: must be between 1 and %d, got %d", EnvPrefix, math.MaxInt32, cfg.TTL))
	}

	errs = append(errs, domainErrors(cfg.Domains)...)

	switch cfg.IPSource {
	case "http", "dns":
	default:
		errs = append(errs, fmt.Sprintf("%sIP_SOURCE: invalid value %q (must be http or dns)", EnvPrefix, cfg.IPSource))
	}

	if cfg.Interval < time.Second {
		errs = append(errs, EnvPrefix+"INTERVAL: must be at least 1s")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("%sLOG_LEVEL: invalid value %q (must be debug, info, warn, or error)", EnvPrefix, cfg.LogLevel))
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("%sLOG_FORMAT: invalid value %q (must be json or text)", EnvPrefix, cfg.LogFormat))
	}

	if cfg.HealthPort < 0 || cfg.HealthPort > 65535 {
		errs = append(errs, fmt.Sprintf("%sHEALTH_PORT: must be between 0 and 65535, got %d", EnvPrefix, cfg.HealthPort))
	}

	return errs
}

// ValidateDomains applies the configuration rules for domains to a list
// assembled outside Load, e.g. from command-line arguments.
func ValidateDomains(domains []Domain) error {
	if errs := domainErrors(domains); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func domainErrors(domains []Domain) []string {
	var errs []string
	seen := make(map[string]bool)
	for _, d := range domains {
		errs = append(errs, validateDomain(d)...)
		key := strings.ToLower(dns.Fqdn(d.Name)) + "/" + d.Type
		if seen[key] {
			errs = append(errs, fmt.Sprintf("domain %s: duplicate %s entry", d.Name, d.Type))
		}
		seen[key] = true
	}
	return errs
}

// validateDomain ensures the name is usable and the value matches the type.
func validateDomain(d Domain) []string {
	var errs []string

	name := strings.TrimSuffix(d.Name, ".")
	if labels, ok := dns.IsDomainName(name); !ok || labels < 2 {
		errs = append(errs, fmt.Sprintf("domain %q: must be a domain name with at least two labels", d.Name))
	}

	switch d.Type {
	case "A":
		if d.Value != "" {
			if addr, err := netip.ParseAddr(d.Value); err != nil || !addr.Is4() {
				errs = append(errs, fmt.Sprintf("domain %s: A records must point to an IPv4 address, got %q", d.Name, d.Value))
			}
		}
	case "AAAA":
		if d.Value != "" {
			if addr, err := netip.ParseAddr(d.Value); err != nil || !addr.Is6() || addr.Is4In6() {
				errs = append(errs, fmt.Sprintf("domain %s: AAAA records must point to an IPv6 address, got %q", d.Name, d.Value))
			}
		}
	case "CNAME":
		if d.Value == "" {
			errs = append(errs, fmt.Sprintf("domain %s: CNAME records need a value", d.Name))
		} else if _, err := netip.ParseAddr(d.Value); err == nil {
			errs = append(errs, fmt.Sprintf("domain %s: CNAME records cannot point to IP addresses, got %q", d.Name, d.Value))
		}
	case "TXT":
		if d.Value == "" {
			errs = append(errs, fmt.Sprintf("domain %s: TXT records need a value", d.Name))
		}
	default:
		errs = append(errs, fmt.Sprintf("domain %s: invalid record type %q (must be A, AAAA, CNAME, or TXT)", d.Name, d.Type))
	}

	return errs
}
