// Package ddns keeps Huawei Cloud DNS record sets in sync with a value.
//
// An Engine resolves the hosted zone for a domain, looks the record sets up
// through a RecordCache and then creates, replaces or leaves them alone.
package ddns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/miekg/dns"

	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

// ZoneLister lists hosted zones by name.
type ZoneLister interface {
	ListZones(ctx context.Context, name string, limit int) ([]huaweicloud.Zone, error)
}

// ZoneResolver finds the most specific hosted zone for a domain.
type ZoneResolver struct {
	api    ZoneLister
	logger *slog.Logger
}

// NewZoneResolver creates a resolver backed by api.
func NewZoneResolver(api ZoneLister, logger *slog.Logger) *ZoneResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZoneResolver{api: api, logger: logger}
}

// Resolve returns the zone whose name is the longest suffix of domain.
// One zone query is made, filtered on the domain's last two labels.
func (r *ZoneResolver) Resolve(ctx context.Context, domain string) (huaweicloud.Zone, error) {
	fqdn := NormalizeDomain(domain)
	labels := dns.SplitDomainName(fqdn)
	if len(labels) < 2 {
		return huaweicloud.Zone{}, fmt.Errorf("%w: %q has fewer than two labels", ErrUnknownDomain, domain)
	}

	root := strings.Join(labels[len(labels)-2:], ".")
	zones, err := r.api.ListZones(ctx, root, huaweicloud.MaxPageSize)
	if err != nil {
		return huaweicloud.Zone{}, fmt.Errorf("resolving zone for %s: %w", fqdn, err)
	}

	zone, ok := MatchZone(fqdn, zones)
	if !ok {
		return huaweicloud.Zone{}, fmt.Errorf("%w: no hosted zone matches %s", ErrUnknownDomain, fqdn)
	}

	r.logger.Debug("resolved zone",
		slog.String("domain", fqdn),
		slog.String("zone", zone.Name),
		slog.String("zone_id", zone.ID),
	)

	return zone, nil
}

// MatchZone picks the zone with the most labels whose name is a suffix of
// domain. Zone names must be fully qualified.
func MatchZone(domain string, zones []huaweicloud.Zone) (huaweicloud.Zone, bool) {
	labels := dns.SplitDomainName(NormalizeDomain(domain))
	for k := len(labels); k >= 2; k-- {
		candidate := strings.Join(labels[len(labels)-k:], ".") + "."
		for _, z := range zones {
			if z.Name == candidate {
				return z, true
			}
		}
	}
	return huaweicloud.Zone{}, false
}

// NormalizeDomain lower-cases domain and makes it fully qualified.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimRight(d, ".")
	if d == "" {
		return "."
	}
	return dns.Fqdn(d)
}
