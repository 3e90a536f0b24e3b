package ddns

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

// RecordSetLister lists the record sets of a zone.
type RecordSetLister interface {
	ListRecordSets(ctx context.Context, zoneID string, q huaweicloud.RecordSetQuery) (*huaweicloud.RecordSetList, error)
}

// CacheKey identifies one cached query.
type CacheKey struct {
	ZoneID string
	Name   string
	Type   string
}

func (k CacheKey) String() string {
	return k.ZoneID + "_" + k.Name + "_" + k.Type
}

// Filter narrows the record sets returned by RecordCache.Get.
type Filter func(huaweicloud.RecordSet) bool

// FilterID matches a single record set id.
func FilterID(id string) Filter {
	return func(r huaweicloud.RecordSet) bool { return r.ID == id }
}

// FilterTTL matches record sets with the given TTL.
func FilterTTL(ttl int) Filter {
	return func(r huaweicloud.RecordSet) bool { return r.TTL == ttl }
}

// FilterRecords matches record sets holding exactly values, in order.
func FilterRecords(values ...string) Filter {
	return func(r huaweicloud.RecordSet) bool { return slices.Equal(r.Records, values) }
}

// cacheEntry is the stored result of one query.
type cacheEntry struct {
	records   map[string]huaweicloud.RecordSet
	truncated bool
}

// RecordCache is a read-through cache of record sets keyed by
// (zone, name, type). Each key is fetched from the API at most once;
// afterwards it only changes through Put and SetRecords.
type RecordCache struct {
	api    RecordSetLister
	logger *slog.Logger

	mu      sync.Mutex
	entries map[CacheKey]*cacheEntry
}

// NewRecordCache creates an empty cache backed by api.
func NewRecordCache(api RecordSetLister, logger *slog.Logger) *RecordCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordCache{
		api:     api,
		logger:  logger,
		entries: make(map[CacheKey]*cacheEntry),
	}
}

// Get returns copies of the cached record sets under (zoneID, name, type)
// that pass every filter, keyed by record id. The first call for a key
// queries the API; a failed query leaves the key unpopulated.
func (c *RecordCache) Get(ctx context.Context, zoneID, name, recordType string, filters ...Filter) (map[string]huaweicloud.RecordSet, error) {
	key := CacheKey{ZoneID: zoneID, Name: name, Type: recordType}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		var err error
		entry, err = c.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		c.entries[key] = entry
	}

	out := make(map[string]huaweicloud.RecordSet)
	for id, r := range entry.records {
		if r.Name != name || r.Type != recordType {
			continue
		}
		if !matchAll(r, filters) {
			continue
		}
		out[id] = r.Clone()
	}
	return out, nil
}

func (c *RecordCache) fetch(ctx context.Context, key CacheKey) (*cacheEntry, error) {
	list, err := c.api.ListRecordSets(ctx, key.ZoneID, huaweicloud.RecordSetQuery{
		Name:  key.Name,
		Type:  key.Type,
		Limit: huaweicloud.MaxPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("querying record sets for %s: %w", key, err)
	}

	entry := &cacheEntry{records: make(map[string]huaweicloud.RecordSet, len(list.RecordSets))}
	for _, r := range list.RecordSets {
		entry.records[r.ID] = project(r)
	}

	if total := list.TotalCount(); total > len(list.RecordSets) {
		entry.truncated = true
		c.logger.Warn("record set query truncated at page limit",
			slog.String("key", key.String()),
			slog.Int("returned", len(list.RecordSets)),
			slog.Int("total", total),
		)
	}

	c.logger.Debug("cached record sets",
		slog.String("key", key.String()),
		slog.Int("count", len(entry.records)),
	)

	return entry, nil
}

// Put stores a record set under key, populating the key if needed.
func (c *RecordCache) Put(key CacheKey, r huaweicloud.RecordSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{records: make(map[string]huaweicloud.RecordSet)}
		c.entries[key] = entry
	}
	entry.records[r.ID] = project(r)
}

// SetRecords replaces the value set of a cached record set. It reports
// false if the record is not cached under key.
func (c *RecordCache) SetRecords(key CacheKey, recordID string, records []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	r, ok := entry.records[recordID]
	if !ok {
		return false
	}
	r.Records = slices.Clone(records)
	entry.records[recordID] = r
	return true
}

// Has reports whether key has been populated.
func (c *RecordCache) Has(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Truncated reports whether the query for key returned fewer record sets
// than the provider holds.
func (c *RecordCache) Truncated(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return ok && entry.truncated
}

// Len returns the number of populated keys.
func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// project keeps the mirrored fields only.
func project(r huaweicloud.RecordSet) huaweicloud.RecordSet {
	return huaweicloud.RecordSet{
		ID:      r.ID,
		Type:    r.Type,
		Name:    r.Name,
		Records: slices.Clone(r.Records),
		TTL:     r.TTL,
	}
}

func matchAll(r huaweicloud.RecordSet, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f(r) {
			return false
		}
	}
	return true
}
