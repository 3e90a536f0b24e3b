package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Configuration defaults.
const (
	DefaultEndpoint    = "dns.myhuaweicloud.com"
	DefaultTimeout     = 30 * time.Second
	DefaultDescription = "Managed by DDNS."
	DefaultRecordType  = "A"
	DefaultIPSource    = "http"
	DefaultInterval    = 5 * time.Minute
	DefaultDryRun      = false
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultHealthPort  = 8080
)

// Defaults returns a Config with every default applied and no domains.
func Defaults() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		Description: DefaultDescription,
		IPSource:    DefaultIPSource,
		Interval:    DefaultInterval,
		DryRun:      DefaultDryRun,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		HealthPort:  DefaultHealthPort,
	}
}

// applyEnv overrides cfg with every HWDDNS_* variable that is set.
// Returns a list of parse errors (may be empty).
func applyEnv(cfg *Config) []string {
	var errs []string

	for _, secret := range []struct {
		key string
		dst *string
	}{
		{"ACCESS_KEY", &cfg.AccessKey},
		{"SECRET_KEY", &cfg.SecretKey},
	} {
		v, err := getEnvWithFileFallback(secret.key)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s_FILE: %v", EnvPrefix, secret.key, err))
			continue
		}
		if v != "" {
			*secret.dst = v
		}
	}

	if v := getEnv(EnvPrefix + "ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := getEnv(EnvPrefix + "PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := getEnv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sTIMEOUT: invalid duration %q (use format like 10s, 1m)", EnvPrefix, v))
		} else {
			cfg.Timeout = d
		}
	}

	if v := getEnv(EnvPrefix + "TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sTTL: invalid integer %q", EnvPrefix, v))
		} else {
			cfg.TTL = ttl
		}
	}
	if v := getEnv(EnvPrefix + "DESCRIPTION"); v != "" {
		cfg.Description = v
	}

	recordType := strings.ToUpper(getEnv(EnvPrefix + "RECORD_TYPE"))
	value := getEnv(EnvPrefix + "VALUE")
	if names := splitList(getEnv(EnvPrefix + "DOMAINS")); len(names) > 0 {
		t := recordType
		if t == "" {
			t = DefaultRecordType
		}
		cfg.Domains = cfg.Domains[:0]
		for _, name := range names {
			cfg.Domains = append(cfg.Domains, Domain{Name: name, Type: t, Value: value})
		}
	} else {
		// Without an explicit domain list, type and value override the file's domains.
		for i := range cfg.Domains {
			if recordType != "" {
				cfg.Domains[i].Type = recordType
			}
			if value != "" {
				cfg.Domains[i].Value = value
			}
		}
	}

	if v := getEnv(EnvPrefix + "IP_SOURCE"); v != "" {
		cfg.IPSource = strings.ToLower(v)
	}
	if v := getEnv(EnvPrefix + "IP_URL"); v != "" {
		cfg.IPURL4 = v
	}
	if v := getEnv(EnvPrefix + "IP6_URL"); v != "" {
		cfg.IPURL6 = v
	}

	if v := getEnv(EnvPrefix + "INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sINTERVAL: invalid duration %q (use format like 60s, 5m)", EnvPrefix, v))
		} else {
			cfg.Interval = d
		}
	}
	if v := getEnv(EnvPrefix + "DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, cfg.DryRun)
	}
	if v := getEnv(EnvPrefix + "LOCK_FILE"); v != "" {
		cfg.LockFile = v
	}

	if v := getEnv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	if v := getEnv(EnvPrefix + "HEALTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sHEALTH_PORT: invalid integer %q", EnvPrefix, v))
		} else {
			cfg.HealthPort = port
		}
	}

	return errs
}
