package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Defaults()
	cfg.AccessKey = "AK"
	cfg.SecretKey = "SK"
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.TTL = 300
	cfg.Proxy = "proxy:3128"
	cfg.Domains = []Domain{
		{Name: "home.example.com", Type: "A"},
		{Name: "home.example.com.", Type: "AAAA", Value: "2001:db8::1"},
		{Name: "www.example.com", Type: "CNAME", Value: "home.example.com."},
		{Name: "_acme.example.com", Type: "TXT", Value: "token"},
		{Name: "static.example.com", Type: "A", Value: "203.0.113.1"},
	}

	if errs := validateConfig(cfg); len(errs) != 0 {
		t.Errorf("validateConfig() errors = %v, want none", errs)
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		domain  Domain
		wantMsg string
	}{
		{"single label", Domain{Name: "localhost", Type: "A"}, "at least two labels"},
		{"empty name", Domain{Name: "", Type: "A"}, "at least two labels"},
		{"unknown type", Domain{Name: "a.example.com", Type: "MX"}, "invalid record type"},
		{"A with IPv6", Domain{Name: "a.example.com", Type: "A", Value: "2001:db8::1"}, "IPv4"},
		{"A with garbage", Domain{Name: "a.example.com", Type: "A", Value: "home"}, "IPv4"},
		{"AAAA with IPv4", Domain{Name: "a.example.com", Type: "AAAA", Value: "192.0.2.1"}, "IPv6"},
		{"AAAA with mapped IPv4", Domain{Name: "a.example.com", Type: "AAAA", Value: "::ffff:192.0.2.1"}, "IPv6"},
		{"CNAME without value", Domain{Name: "a.example.com", Type: "CNAME"}, "need a value"},
		{"CNAME to IP", Domain{Name: "a.example.com", Type: "CNAME", Value: "192.0.2.1"}, "cannot point to IP"},
		{"TXT without value", Domain{Name: "a.example.com", Type: "TXT"}, "need a value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateDomain(tt.domain)
			if len(errs) == 0 {
				t.Fatalf("validateDomain(%+v) returned no errors", tt.domain)
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestValidateConfig_DuplicateDomain(t *testing.T) {
	cfg := validConfig()
	cfg.Domains = []Domain{
		{Name: "Home.example.com", Type: "A"},
		{Name: "home.example.com.", Type: "A"},
	}

	errs := validateConfig(cfg)
	if len(errs) != 1 || !strings.Contains(errs[0], "duplicate") {
		t.Errorf("validateConfig() errors = %v, want one duplicate error", errs)
	}
}

func TestValidateConfig_TTLBounds(t *testing.T) {
	tests := []struct {
		ttl     int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{2147483647, false},
		{-1, true},
		{2147483648, true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.TTL = tt.ttl
		errs := validateConfig(cfg)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("TTL %d: errors = %v, wantErr %v", tt.ttl, errs, tt.wantErr)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	single := &ValidationError{Errors: []string{"one"}}
	if got := single.Error(); got != "configuration error: one" {
		t.Errorf("Error() = %q", got)
	}

	multi := &ValidationError{Errors: []string{"one", "two"}}
	if got := multi.Error(); got != "configuration errors:\n  - one\n  - two" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidateDomains(t *testing.T) {
	if err := ValidateDomains([]Domain{{Name: "home.example.com", Type: "A"}}); err != nil {
		t.Errorf("ValidateDomains(valid) = %v", err)
	}

	err := ValidateDomains([]Domain{
		{Name: "home.example.com", Type: "MX", Value: "x"},
		{Name: "home.example.com", Type: "A", Value: "2001:db8::1"},
	})
	if !IsValidationError(err) {
		t.Fatalf("ValidateDomains() error = %v, want *ValidationError", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "invalid record type") || !strings.Contains(msg, "IPv4") {
		t.Errorf("ValidateDomains() error = %q, want both problems reported", msg)
	}
}
