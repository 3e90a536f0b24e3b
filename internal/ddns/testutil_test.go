package ddns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"gitlab.bluewillows.net/root/hwddns/providers/huaweicloud"
)

// fakeCloud is a scripted Huawei Cloud DNS endpoint served through a
// huaweicloud.Transport. It counts every request by method.
type fakeCloud struct {
	mu         sync.Mutex
	zones      []huaweicloud.Zone
	recordsets map[string][]huaweicloud.RecordSet // zone id -> record sets
	totalCount map[string]int                     // zone id -> reported total, if set
	calls      map[string]int                     // method -> count
	paths      []string

	// rejectUpdate makes PUT fail for these record ids.
	rejectUpdate map[string]int
	// rejectCreate makes POST fail with this status.
	rejectCreate int
	// failList makes record set listing fail with this status.
	failList int
	nextID   int
}

func newFakeCloud(zones ...huaweicloud.Zone) *fakeCloud {
	return &fakeCloud{
		zones:        zones,
		recordsets:   make(map[string][]huaweicloud.RecordSet),
		totalCount:   make(map[string]int),
		calls:        make(map[string]int),
		rejectUpdate: make(map[string]int),
	}
}

func (f *fakeCloud) addRecordSet(zoneID string, r huaweicloud.RecordSet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordsets[zoneID] = append(f.recordsets[zoneID], r)
}

func (f *fakeCloud) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeCloud) writes() int {
	return f.count(http.MethodPost) + f.count(http.MethodPut)
}

func (f *fakeCloud) Send(_ context.Context, method, rawURL string, body []byte, _ map[string]string) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[method]++

	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, err
	}
	f.paths = append(f.paths, method+" "+u.Path)
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case method == http.MethodGet && u.Path == "/v2/zones":
		return f.listZones(u.Query())
	case method == http.MethodGet && len(parts) == 4 && parts[3] == "recordsets":
		return f.listRecordSets(parts[2], u.Query())
	case method == http.MethodPost && len(parts) == 4 && parts[3] == "recordsets":
		return f.create(parts[2], body)
	case method == http.MethodPut && len(parts) == 5 && parts[3] == "recordsets":
		return f.update(parts[2], parts[4], body)
	}
	return http.StatusNotFound, []byte(`{"code":"APIGW.0101","message":"not found"}`), nil
}

func (f *fakeCloud) listZones(q url.Values) (int, []byte, error) {
	name := q.Get("name")
	var out []huaweicloud.Zone
	for _, z := range f.zones {
		// Provider-side name matching is fuzzy.
		if name == "" || strings.Contains(z.Name, name) {
			out = append(out, z)
		}
	}
	return jsonResponse(map[string]any{"zones": out})
}

func (f *fakeCloud) listRecordSets(zoneID string, q url.Values) (int, []byte, error) {
	if f.failList != 0 {
		return f.failList, []byte(`{"code":"DNS.0001","message":"list failed"}`), nil
	}
	var out []huaweicloud.RecordSet
	for _, r := range f.recordsets[zoneID] {
		if n := q.Get("name"); n != "" && r.Name != n {
			continue
		}
		if t := q.Get("type"); t != "" && r.Type != t {
			continue
		}
		out = append(out, r)
	}
	total := len(out)
	if n, ok := f.totalCount[zoneID]; ok {
		total = n
	}
	return jsonResponse(map[string]any{
		"recordsets": out,
		"metadata":   map[string]int{"total_count": total},
	})
}

func (f *fakeCloud) create(zoneID string, body []byte) (int, []byte, error) {
	if f.rejectCreate != 0 {
		return f.rejectCreate, []byte(`{"code":"DNS.0312","message":"create rejected"}`), nil
	}
	var req huaweicloud.RecordSetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, []byte(err.Error()), nil
	}
	f.nextID++
	r := huaweicloud.RecordSet{
		ID:      fmt.Sprintf("created-%d", f.nextID),
		Name:    req.Name,
		Type:    req.Type,
		Records: req.Records,
		TTL:     300,
	}
	if req.TTL != nil {
		r.TTL = *req.TTL
	}
	f.recordsets[zoneID] = append(f.recordsets[zoneID], r)
	return jsonResponse(r)
}

func (f *fakeCloud) update(zoneID, recordID string, body []byte) (int, []byte, error) {
	if status, ok := f.rejectUpdate[recordID]; ok {
		return status, []byte(`{"code":"DNS.0305","message":"update rejected"}`), nil
	}
	var req huaweicloud.RecordSetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, []byte(err.Error()), nil
	}
	for i, r := range f.recordsets[zoneID] {
		if r.ID == recordID {
			r.Records = req.Records
			f.recordsets[zoneID][i] = r
			return jsonResponse(r)
		}
	}
	return http.StatusNotFound, []byte(`{"code":"DNS.0313","message":"record set not found"}`), nil
}

func jsonResponse(v any) (int, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, b, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

// newTestClient wires a signed client to fake.
func newTestClient(fake *fakeCloud) *huaweicloud.Client {
	return huaweicloud.NewClient(
		huaweicloud.Credentials{AccessKey: "AKTEST", SecretKey: "SKTEST"},
		huaweicloud.WithTransport(fake),
		huaweicloud.WithClock(fixedClock),
		huaweicloud.WithLogger(discardLogger()),
	)
}

func newTestEngine(fake *fakeCloud, opts ...Option) *Engine {
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	return NewEngine(newTestClient(fake), opts...)
}
