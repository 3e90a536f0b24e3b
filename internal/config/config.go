// Package config handles loading and validation of hwddns configuration
// from environment variables and an optional YAML or TOML file.
package config

import (
	"time"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "HWDDNS_"

// Domain is one record set to keep in sync.
type Domain struct {
	Name string
	Type string // A, AAAA, CNAME, TXT

	// Value is written as-is when set. Empty means the address is
	// discovered at runtime (A and AAAA only).
	Value string
}

// Config holds the resolved application configuration.
// File values override defaults; environment variables override both.
type Config struct {
	// Credentials
	AccessKey string
	SecretKey string

	// API
	Endpoint string
	Proxy    string
	Timeout  time.Duration

	// Records
	TTL         int // 0 leaves the TTL to the provider
	Description string
	Domains     []Domain

	// Address discovery
	IPSource string
	IPURL4   string
	IPURL6   string

	// Behavior
	Interval time.Duration
	DryRun   bool
	LockFile string

	// Logging
	LogLevel  string
	LogFormat string

	// HealthPort serves /health, /ready and /metrics in daemon mode; 0 disables.
	HealthPort int

	// ConfigFile is the file the configuration was loaded from, if any.
	ConfigFile string
}

// DomainNames returns the configured domain names in order.
func (c *Config) DomainNames() []string {
	names := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		names = append(names, d.Name)
	}
	return names
}
