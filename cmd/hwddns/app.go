package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gitlab.bluewillows.net/root/hwddns/internal/config"
	"gitlab.bluewillows.net/root/hwddns/internal/ddns"
	"gitlab.bluewillows.net/root/hwddns/internal/health"
	"gitlab.bluewillows.net/root/hwddns/internal/ipsource"
	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
	"gitlab.bluewillows.net/root/hwddns/pkg/httputil"
	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

// app wires configuration to the API client, address source and engine.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *huaweicloud.Client
	addrs  ipsource.Source
}

func newApp(cfg *config.Config, logger *slog.Logger, clientOpts ...huaweicloud.ClientOption) (*app, error) {
	httpClient, err := httputil.NewClient(&httputil.ClientConfig{
		Timeout:   cfg.Timeout,
		Proxy:     cfg.Proxy,
		UserAgent: "hwddns/" + Version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	opts := append([]huaweicloud.ClientOption{
		huaweicloud.WithHTTPClient(httpClient),
		huaweicloud.WithHost(cfg.Endpoint),
		huaweicloud.WithLogger(logger),
	}, clientOpts...)
	client := huaweicloud.NewClient(huaweicloud.Credentials{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	}, opts...)

	// Address discovery must see this host's egress address, never the proxy's.
	directClient, err := httputil.NewClient(&httputil.ClientConfig{
		Timeout:   cfg.Timeout,
		UserAgent: "hwddns/" + Version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	addrs, err := ipsource.New(ipsource.Config{
		Kind:       cfg.IPSource,
		URL4:       cfg.IPURL4,
		URL6:       cfg.IPURL6,
		Timeout:    cfg.Timeout,
		HTTPClient: directClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, client: client, addrs: addrs}, nil
}

// newEngine returns an engine with an empty cache, so every cycle sees the
// provider's current record sets.
func (a *app) newEngine(logger *slog.Logger) *ddns.Engine {
	return ddns.NewEngine(a.client,
		ddns.WithLogger(logger),
		ddns.WithTTL(a.cfg.TTL),
		ddns.WithDescription(a.cfg.Description),
		ddns.WithDryRun(a.cfg.DryRun),
	)
}

// cycle updates every domain once. Failures are isolated per domain and
// joined into the returned error.
func (a *app) cycle(ctx context.Context, domains []config.Domain) (health.CycleReport, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := a.logger.With(slog.String("run_id", runID))
	engine := a.newEngine(logger)

	report := health.CycleReport{RunID: runID, Started: start}
	discovered := make(map[string]string)
	var errs []error

	for _, d := range domains {
		res := health.DomainResult{Domain: d.Name, Type: d.Type}

		value, err := a.value(ctx, d, discovered)
		if err == nil {
			res.Value = value
			var outcome *ddns.Outcome
			outcome, err = engine.Update(ctx, d.Name, value, d.Type)
			if outcome != nil {
				res.Summary = outcome.Summary()
				for _, r := range outcome.Results {
					logger.Debug("record result", slog.String("result", r.String()))
				}
			}
		}

		if err != nil {
			res.Error = err.Error()
			report.Failed++
			errs = append(errs, fmt.Errorf("%s %s: %w", d.Name, d.Type, err))
			logger.Error("domain update failed",
				slog.String("domain", d.Name),
				slog.String("type", d.Type),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("domain updated",
				slog.String("domain", d.Name),
				slog.String("type", d.Type),
				slog.String("value", value),
				slog.String("summary", res.Summary),
			)
		}
		report.Domains = append(report.Domains, res)
	}

	err := errors.Join(errs...)
	report.Duration = time.Since(start).Round(time.Millisecond).String()
	metrics.ObserveCycle(start, err)

	logger.Info("update cycle complete",
		slog.Int("domains", len(domains)),
		slog.Int("failed", report.Failed),
		slog.String("duration", report.Duration),
		slog.Bool("dry_run", a.cfg.DryRun),
	)

	return report, err
}

// value returns the configured value for d, or the discovered public
// address for A and AAAA records. Lookups are shared within a cycle.
func (a *app) value(ctx context.Context, d config.Domain, discovered map[string]string) (string, error) {
	if d.Value != "" {
		return ipsource.Static{Value: d.Value}.Lookup(ctx, d.Type)
	}
	if v, ok := discovered[d.Type]; ok {
		return v, nil
	}

	v, err := a.addrs.Lookup(ctx, d.Type)
	if err != nil {
		return "", fmt.Errorf("discovering public address: %w", err)
	}
	discovered[d.Type] = v
	return v, nil
}

// acquireLock takes an exclusive, non-blocking lock on path. An empty path
// disables locking.
func acquireLock(path string, logger *slog.Logger) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another hwddns instance holds %s", path)
	}
	logger.Debug("acquired lock file", slog.String("path", path))

	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("releasing lock file", slog.String("path", path), slog.String("error", err.Error()))
		}
	}, nil
}
