package config

import (
	"log/slog"
)

// ConfigPathEnv names the environment variable holding the config file path.
const ConfigPathEnv = EnvPrefix + "CONFIG"

// Load builds the configuration from defaults, the optional file at path
// (or $HWDDNS_CONFIG when path is empty) and HWDDNS_* environment variables,
// in increasing precedence. All problems are reported together as a
// *ValidationError.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv(ConfigPathEnv)
	}

	cfg := Defaults()
	var errs []string

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, &ValidationError{Errors: []string{"config file: " + err.Error()}}
		}
		slog.Debug("loaded configuration from file", slog.String("path", path))
		cfg.ConfigFile = path
		errs = append(errs, fileCfg.apply(cfg)...)
	}

	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, validateConfig(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}
