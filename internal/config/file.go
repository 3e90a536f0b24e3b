package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file structure (YAML or TOML).
type FileConfig struct {
	Credentials *FileCredentialsConfig `yaml:"credentials,omitempty" toml:"credentials"`
	API         *FileAPIConfig         `yaml:"api,omitempty" toml:"api"`
	Records     *FileRecordsConfig     `yaml:"records,omitempty" toml:"records"`
	Domains     []FileDomainConfig     `yaml:"domains,omitempty" toml:"domains"`
	IP          *FileIPConfig          `yaml:"ip,omitempty" toml:"ip"`
	Run         *FileRunConfig         `yaml:"run,omitempty" toml:"run"`
	Logging     *FileLoggingConfig     `yaml:"logging,omitempty" toml:"logging"`
	Server      *FileServerConfig      `yaml:"server,omitempty" toml:"server"`
}

// FileCredentialsConfig holds the access key pair, inline or as secret files.
type FileCredentialsConfig struct {
	AccessKey     string `yaml:"access_key,omitempty" toml:"access_key"`
	SecretKey     string `yaml:"secret_key,omitempty" toml:"secret_key"`
	AccessKeyFile string `yaml:"access_key_file,omitempty" toml:"access_key_file"`
	SecretKeyFile string `yaml:"secret_key_file,omitempty" toml:"secret_key_file"`
}

// FileAPIConfig holds API connection settings.
type FileAPIConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint"` // host, e.g. dns.myhuaweicloud.com
	Proxy    string `yaml:"proxy,omitempty" toml:"proxy"`       // host:port or http://host:port
	Timeout  string `yaml:"timeout,omitempty" toml:"timeout"`   // Go duration format
}

// FileRecordsConfig holds settings applied to every written record set.
type FileRecordsConfig struct {
	TTL         int    `yaml:"ttl,omitempty" toml:"ttl"`
	Description string `yaml:"description,omitempty" toml:"description"`
	Type        string `yaml:"type,omitempty" toml:"type"` // default for domains without a type
}

// FileDomainConfig is one managed record set.
type FileDomainConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Type  string `yaml:"type,omitempty" toml:"type"`
	Value string `yaml:"value,omitempty" toml:"value"`
}

// FileIPConfig holds public address discovery settings.
type FileIPConfig struct {
	Source string `yaml:"source,omitempty" toml:"source"` // http, dns
	URL    string `yaml:"url,omitempty" toml:"url"`
	URL6   string `yaml:"url6,omitempty" toml:"url6"`
}

// FileRunConfig holds daemon settings.
type FileRunConfig struct {
	Interval string `yaml:"interval,omitempty" toml:"interval"`
	DryRun   *bool  `yaml:"dry_run,omitempty" toml:"dry_run"` // Pointer to distinguish unset from false
	LockFile string `yaml:"lock_file,omitempty" toml:"lock_file"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format"` // json, text
}

// FileServerConfig holds health/metrics server settings.
type FileServerConfig struct {
	Port *int `yaml:"port,omitempty" toml:"port"` // 0 disables the server
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars interpolates environment variables in all string fields.
func (c *FileConfig) interpolateEnvVars() {
	interpolate := func(fields ...*string) {
		for _, f := range fields {
			*f = InterpolateEnvVars(*f)
		}
	}

	if c.Credentials != nil {
		cr := c.Credentials
		interpolate(&cr.AccessKey, &cr.SecretKey, &cr.AccessKeyFile, &cr.SecretKeyFile)
	}
	if c.API != nil {
		interpolate(&c.API.Endpoint, &c.API.Proxy, &c.API.Timeout)
	}
	if c.Records != nil {
		interpolate(&c.Records.Description, &c.Records.Type)
	}
	for i := range c.Domains {
		d := &c.Domains[i]
		interpolate(&d.Name, &d.Type, &d.Value)
	}
	if c.IP != nil {
		interpolate(&c.IP.Source, &c.IP.URL, &c.IP.URL6)
	}
	if c.Run != nil {
		interpolate(&c.Run.Interval, &c.Run.LockFile)
	}
	if c.Logging != nil {
		interpolate(&c.Logging.Level, &c.Logging.Format)
	}
}

// LoadFile reads and parses a configuration file, detecting the format by
// extension: .toml is TOML, anything else is YAML.
// Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}

// apply copies every set file value onto cfg.
// Returns a list of conversion errors (may be empty).
func (c *FileConfig) apply(cfg *Config) []string {
	var errs []string

	if cr := c.Credentials; cr != nil {
		if cr.AccessKey != "" {
			cfg.AccessKey = cr.AccessKey
		}
		if cr.SecretKey != "" {
			cfg.SecretKey = cr.SecretKey
		}
		if cr.AccessKeyFile != "" {
			v, err := readSecretFile(cr.AccessKeyFile)
			if err != nil {
				errs = append(errs, "credentials.access_key_file: "+err.Error())
			} else {
				cfg.AccessKey = v
			}
		}
		if cr.SecretKeyFile != "" {
			v, err := readSecretFile(cr.SecretKeyFile)
			if err != nil {
				errs = append(errs, "credentials.secret_key_file: "+err.Error())
			} else {
				cfg.SecretKey = v
			}
		}
	}

	if a := c.API; a != nil {
		if a.Endpoint != "" {
			cfg.Endpoint = a.Endpoint
		}
		if a.Proxy != "" {
			cfg.Proxy = a.Proxy
		}
		if a.Timeout != "" {
			d, err := time.ParseDuration(a.Timeout)
			if err != nil {
				errs = append(errs, fmt.Sprintf("api.timeout: invalid duration %q", a.Timeout))
			} else {
				cfg.Timeout = d
			}
		}
	}

	defaultType := DefaultRecordType
	if r := c.Records; r != nil {
		if r.TTL != 0 {
			cfg.TTL = r.TTL
		}
		if r.Description != "" {
			cfg.Description = r.Description
		}
		if r.Type != "" {
			defaultType = strings.ToUpper(r.Type)
		}
	}

	for _, d := range c.Domains {
		t := strings.ToUpper(d.Type)
		if t == "" {
			t = defaultType
		}
		cfg.Domains = append(cfg.Domains, Domain{Name: d.Name, Type: t, Value: d.Value})
	}

	if ip := c.IP; ip != nil {
		if ip.Source != "" {
			cfg.IPSource = strings.ToLower(ip.Source)
		}
		if ip.URL != "" {
			cfg.IPURL4 = ip.URL
		}
		if ip.URL6 != "" {
			cfg.IPURL6 = ip.URL6
		}
	}

	if r := c.Run; r != nil {
		if r.Interval != "" {
			d, err := time.ParseDuration(r.Interval)
			if err != nil {
				errs = append(errs, fmt.Sprintf("run.interval: invalid duration %q", r.Interval))
			} else {
				cfg.Interval = d
			}
		}
		if r.DryRun != nil {
			cfg.DryRun = *r.DryRun
		}
		if r.LockFile != "" {
			cfg.LockFile = r.LockFile
		}
	}

	if l := c.Logging; l != nil {
		if l.Level != "" {
			cfg.LogLevel = strings.ToLower(l.Level)
		}
		if l.Format != "" {
			cfg.LogFormat = strings.ToLower(l.Format)
		}
	}

	if c.Server != nil && c.Server.Port != nil {
		cfg.HealthPort = *c.Server.Port
	}

	return errs
}
