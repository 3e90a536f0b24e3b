package ddns

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

func TestMatchZone(t *testing.T) {
	zones := []huaweicloud.Zone{
		{ID: "z-b", Name: "b.com."},
		{ID: "z-ab", Name: "a.b.com."},
		{ID: "z-other", Name: "other.com."},
	}

	tests := []struct {
		name   string
		domain string
		wantID string
		wantOK bool
	}{
		{name: "longest suffix wins", domain: "x.a.b.com", wantID: "z-ab", wantOK: true},
		{name: "longest suffix wins fqdn", domain: "x.a.b.com.", wantID: "z-ab", wantOK: true},
		{name: "apex of nested zone", domain: "a.b.com", wantID: "z-ab", wantOK: true},
		{name: "parent zone", domain: "y.b.com", wantID: "z-b", wantOK: true},
		{name: "deep name", domain: "p.q.r.b.com", wantID: "z-b", wantOK: true},
		{name: "case insensitive", domain: "X.A.B.COM", wantID: "z-ab", wantOK: true},
		{name: "no match", domain: "www.example.com", wantOK: false},
		{name: "suffix but not label aligned", domain: "xb.com", wantOK: false},
		{name: "single label", domain: "com", wantOK: false},
		{name: "empty", domain: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, ok := MatchZone(tt.domain, zones)
			if ok != tt.wantOK {
				t.Fatalf("MatchZone(%q) ok = %v, want %v", tt.domain, ok, tt.wantOK)
			}
			if ok && zone.ID != tt.wantID {
				t.Errorf("MatchZone(%q) = %s, want %s", tt.domain, zone.ID, tt.wantID)
			}
		})
	}
}

func TestMatchZone_OrderIndependent(t *testing.T) {
	forward := []huaweicloud.Zone{{ID: "z-b", Name: "b.com."}, {ID: "z-ab", Name: "a.b.com."}}
	reverse := []huaweicloud.Zone{{ID: "z-ab", Name: "a.b.com."}, {ID: "z-b", Name: "b.com."}}

	for _, zones := range [][]huaweicloud.Zone{forward, reverse} {
		zone, ok := MatchZone("x.a.b.com", zones)
		if !ok || zone.ID != "z-ab" {
			t.Errorf("MatchZone() = %v, %v; want z-ab", zone, ok)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"www.example.com":    "www.example.com.",
		"www.example.com.":   "www.example.com.",
		"WWW.Example.COM":    "www.example.com.",
		" www.example.com. ": "www.example.com.",
		"www.example.com..":  "www.example.com.",
		"":                   ".",
	}
	for in, want := range tests {
		if got := NormalizeDomain(in); got != want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestZoneResolver_Resolve(t *testing.T) {
	fake := newFakeCloud(
		huaweicloud.Zone{ID: "z-b", Name: "b.com."},
		huaweicloud.Zone{ID: "z-ab", Name: "a.b.com."},
	)
	r := NewZoneResolver(newTestClient(fake), discardLogger())

	zone, err := r.Resolve(context.Background(), "x.a.b.com")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if zone.ID != "z-ab" {
		t.Errorf("Resolve() = %s, want z-ab", zone.ID)
	}

	if got := fake.count(http.MethodGet); got != 1 {
		t.Errorf("expected one zone query, got %d", got)
	}
}

func TestZoneResolver_QueriesRootDomain(t *testing.T) {
	var gotName string
	lister := zoneListerFunc(func(_ context.Context, name string, limit int) ([]huaweicloud.Zone, error) {
		gotName = name
		if limit != huaweicloud.MaxPageSize {
			t.Errorf("limit = %d, want %d", limit, huaweicloud.MaxPageSize)
		}
		return []huaweicloud.Zone{{ID: "z1", Name: "example.com."}}, nil
	})

	r := NewZoneResolver(lister, discardLogger())
	if _, err := r.Resolve(context.Background(), "deep.sub.Example.com."); err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if gotName != "example.com" {
		t.Errorf("queried name = %q, want %q", gotName, "example.com")
	}
}

func TestZoneResolver_UnknownDomain(t *testing.T) {
	fake := newFakeCloud(huaweicloud.Zone{ID: "z1", Name: "example.com."})
	r := NewZoneResolver(newTestClient(fake), discardLogger())

	for _, domain := range []string{"www.example.org", "localhost", ""} {
		_, err := r.Resolve(context.Background(), domain)
		if !IsUnknownDomain(err) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownDomain", domain, err)
		}
	}
}

func TestZoneResolver_APIErrorPropagates(t *testing.T) {
	lister := zoneListerFunc(func(context.Context, string, int) ([]huaweicloud.Zone, error) {
		return nil, &huaweicloud.APIError{Method: "GET", Path: "/v2/zones", StatusCode: http.StatusUnauthorized, Body: "denied"}
	})

	r := NewZoneResolver(lister, nil)
	_, err := r.Resolve(context.Background(), "www.example.com")
	if !huaweicloud.IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
	if errors.Is(err, ErrUnknownDomain) {
		t.Error("API failure must not be reported as unknown domain")
	}
}

type zoneListerFunc func(ctx context.Context, name string, limit int) ([]huaweicloud.Zone, error)

func (f zoneListerFunc) ListZones(ctx context.Context, name string, limit int) ([]huaweicloud.Zone, error) {
	return f(ctx, name, limit)
}
