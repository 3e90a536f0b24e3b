package ddns

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

// DefaultDescription is attached to every record set the engine writes.
const DefaultDescription = "Managed by DDNS."

// API is the subset of the Huawei Cloud DNS client the engine needs.
type API interface {
	ZoneLister
	RecordSetLister
	CreateRecordSet(ctx context.Context, zoneID string, body huaweicloud.RecordSetRequest) (*huaweicloud.RecordSet, error)
	UpdateRecordSet(ctx context.Context, zoneID, recordID string, body huaweicloud.RecordSetRequest) (*huaweicloud.RecordSet, error)
}

// Engine decides between create, update and no-op for a domain and applies
// the decision. It owns its ZoneResolver and RecordCache.
type Engine struct {
	api         API
	resolver    *ZoneResolver
	cache       *RecordCache
	logger      *slog.Logger
	ttl         *int
	description string
	dryRun      bool

	mu sync.Mutex
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTTL sets the TTL sent with every create and update. Zero or negative
// leaves the TTL to the provider.
func WithTTL(ttl int) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = &ttl
		} else {
			e.ttl = nil
		}
	}
}

// WithDescription overrides the record set description.
func WithDescription(description string) Option {
	return func(e *Engine) {
		if description != "" {
			e.description = description
		}
	}
}

// WithDryRun makes the engine decide and log without writing.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// NewEngine creates an engine with an empty cache.
func NewEngine(api API, opts ...Option) *Engine {
	e := &Engine{
		api:         api,
		logger:      slog.Default(),
		description: DefaultDescription,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.resolver = NewZoneResolver(api, e.logger)
	e.cache = NewRecordCache(api, e.logger)

	return e
}

// Cache returns the engine's record cache.
func (e *Engine) Cache() *RecordCache {
	return e.cache
}

// DryRun reports whether writes are suppressed.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Update makes every record set named domain with the given type hold
// exactly value. Zone and query failures abort the call. Write failures are
// isolated per record set and reported together as a *PartialUpdateError,
// returned alongside the Outcome.
func (e *Engine) Update(ctx context.Context, domain, value, recordType string) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	recordType = strings.ToUpper(recordType)
	name := NormalizeDomain(domain)
	outcome := newOutcome(name, recordType, value, e.dryRun)
	defer outcome.complete()

	zone, err := e.resolver.Resolve(ctx, domain)
	if err != nil {
		return outcome, err
	}
	outcome.ZoneID = zone.ID

	key := CacheKey{ZoneID: zone.ID, Name: name, Type: recordType}
	existing, err := e.cache.Get(ctx, zone.ID, name, recordType)
	if err != nil {
		return outcome, err
	}

	body := huaweicloud.RecordSetRequest{
		Name:        name,
		Description: e.description,
		Type:        recordType,
		Records:     []string{value},
		TTL:         e.ttl,
	}

	if len(existing) == 0 {
		outcome.add(e.create(ctx, key, body))
	} else {
		ids := make([]string, 0, len(existing))
		for id := range existing {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			outcome.add(e.apply(ctx, key, existing[id], body))
		}
	}

	for _, r := range outcome.Results {
		metrics.RecordActionsTotal.WithLabelValues(string(r.Action), string(r.Status)).Inc()
	}

	if failures := outcome.Failures(); len(failures) > 0 {
		perr := &PartialUpdateError{Domain: name, Succeeded: len(outcome.Results) - len(failures)}
		for _, f := range failures {
			perr.Failures = append(perr.Failures, RecordFailure{RecordID: f.RecordID, Action: f.Action, Err: f.Err})
		}
		return outcome, perr
	}

	return outcome, nil
}

func (e *Engine) create(ctx context.Context, key CacheKey, body huaweicloud.RecordSetRequest) RecordResult {
	result := RecordResult{Name: key.Name, Type: key.Type, Action: ActionCreate}

	if e.dryRun {
		e.logger.Info("would create record set",
			slog.String("name", key.Name),
			slog.String("type", key.Type),
			slog.Any("records", body.Records),
		)
		result.Status = StatusSkipped
		return result
	}

	created, err := e.api.CreateRecordSet(ctx, key.ZoneID, body)
	if err != nil {
		e.logger.Error("failed to create record set",
			slog.String("name", key.Name),
			slog.String("type", key.Type),
			slog.String("error", err.Error()),
		)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	mirror := created.Clone()
	if mirror.Name == "" {
		mirror.Name = key.Name
	}
	if mirror.Type == "" {
		mirror.Type = key.Type
	}
	if len(mirror.Records) == 0 {
		mirror.Records = slices.Clone(body.Records)
	}
	e.cache.Put(key, mirror)

	result.RecordID = mirror.ID
	result.Records = mirror.Records
	result.Status = StatusSuccess
	return result
}

func (e *Engine) apply(ctx context.Context, key CacheKey, current huaweicloud.RecordSet, body huaweicloud.RecordSetRequest) RecordResult {
	result := RecordResult{
		RecordID: current.ID,
		Name:     key.Name,
		Type:     key.Type,
		Records:  current.Records,
	}

	if slices.Equal(current.Records, body.Records) {
		e.logger.Debug("record set unchanged",
			slog.String("name", key.Name),
			slog.String("type", key.Type),
			slog.String("record_id", current.ID),
		)
		result.Action = ActionUnchanged
		result.Status = StatusSuccess
		return result
	}

	result.Action = ActionUpdate

	if e.dryRun {
		e.logger.Info("would update record set",
			slog.String("name", key.Name),
			slog.String("type", key.Type),
			slog.String("record_id", current.ID),
			slog.Any("from", current.Records),
			slog.Any("to", body.Records),
		)
		result.Status = StatusSkipped
		return result
	}

	updated, err := e.api.UpdateRecordSet(ctx, key.ZoneID, current.ID, body)
	if err != nil {
		e.logger.Error("failed to update record set",
			slog.String("name", key.Name),
			slog.String("type", key.Type),
			slog.String("record_id", current.ID),
			slog.String("error", err.Error()),
		)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	confirmed := body.Records
	if updated != nil && len(updated.Records) > 0 {
		confirmed = updated.Records
	}
	e.cache.SetRecords(key, current.ID, confirmed)

	result.Records = slices.Clone(confirmed)
	result.Status = StatusSuccess
	return result
}
