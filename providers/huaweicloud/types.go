package huaweicloud

// Zone is a hosted zone. Name is fully qualified with a trailing dot.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// zonesResponse wraps GET /v2/zones.
type zonesResponse struct {
	Zones    []Zone   `json:"zones"`
	Metadata metadata `json:"metadata"`
}

// metadata carries list totals.
type metadata struct {
	TotalCount int `json:"total_count"`
}

// RecordSet is a named, typed set of record values under a zone.
type RecordSet struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Records []string `json:"records"`
	TTL     int      `json:"ttl"`
}

// Clone returns a copy that does not share the Records slice.
func (r RecordSet) Clone() RecordSet {
	r.Records = append([]string(nil), r.Records...)
	return r
}

// RecordSetList is one page of GET /v2/zones/{zone_id}/recordsets.
type RecordSetList struct {
	RecordSets []RecordSet `json:"recordsets"`
	Metadata   metadata    `json:"metadata"`
}

// TotalCount is the number of matching record sets the provider reported,
// which may exceed len(RecordSets) when the page limit was hit.
func (l *RecordSetList) TotalCount() int {
	return l.Metadata.TotalCount
}

// RecordSetQuery selects record sets in a zone.
type RecordSetQuery struct {
	Name  string
	Type  string
	Limit int
}

// RecordSetRequest is the body for creating or replacing a record set.
type RecordSetRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Records     []string `json:"records"`
	TTL         *int     `json:"ttl,omitempty"`
}
