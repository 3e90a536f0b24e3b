package ddns

import (
	"fmt"
	"strings"
	"time"
)

// Action is the decision taken for one record set.
type Action string

const (
	// ActionCreate indicates no record set existed and one was (or would be) created.
	ActionCreate Action = "create"
	// ActionUpdate indicates the record set's value differed and was (or would be) replaced.
	ActionUpdate Action = "update"
	// ActionUnchanged indicates the record set already held the value.
	ActionUnchanged Action = "unchanged"
)

// Status is the outcome of an action.
type Status string

const (
	// StatusSuccess indicates the action completed, or needed no API call.
	StatusSuccess Status = "success"
	// StatusFailed indicates the provider or transport rejected the write.
	StatusFailed Status = "failed"
	// StatusSkipped indicates a write was planned but not sent (dry-run).
	StatusSkipped Status = "skipped"
)

// RecordResult describes what happened to one record set.
type RecordResult struct {
	RecordID string
	Name     string
	Type     string
	Action   Action
	Status   Status

	// Records is the value set after the action: the confirmed value on
	// success, the unchanged previous value otherwise.
	Records []string

	Err error
}

// String returns a human-readable representation of the result.
func (r RecordResult) String() string {
	id := r.RecordID
	if id == "" {
		id = "-"
	}
	s := fmt.Sprintf("[%s] %s %s %s (%s) -> %s",
		r.Status, r.Action, r.Name, r.Type, id, strings.Join(r.Records, ","))
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

// Outcome aggregates the per-record results of one Update call.
type Outcome struct {
	Domain    string
	ZoneID    string
	Type      string
	Value     string
	DryRun    bool
	Results   []RecordResult
	StartTime time.Time
	EndTime   time.Time
}

func newOutcome(domain, recordType, value string, dryRun bool) *Outcome {
	return &Outcome{
		Domain:    domain,
		Type:      recordType,
		Value:     value,
		DryRun:    dryRun,
		StartTime: time.Now(),
	}
}

func (o *Outcome) add(r RecordResult) {
	o.Results = append(o.Results, r)
}

func (o *Outcome) complete() {
	o.EndTime = time.Now()
}

// Duration returns how long the call took.
func (o *Outcome) Duration() time.Duration {
	if o.EndTime.IsZero() {
		return time.Since(o.StartTime)
	}
	return o.EndTime.Sub(o.StartTime)
}

func (o *Outcome) count(action Action, status Status) int {
	n := 0
	for _, r := range o.Results {
		if r.Action == action && r.Status == status {
			n++
		}
	}
	return n
}

// Created returns the number of record sets created.
func (o *Outcome) Created() int { return o.count(ActionCreate, StatusSuccess) }

// Updated returns the number of record sets whose value was replaced.
func (o *Outcome) Updated() int { return o.count(ActionUpdate, StatusSuccess) }

// Unchanged returns the number of record sets that already held the value.
func (o *Outcome) Unchanged() int { return o.count(ActionUnchanged, StatusSuccess) }

// Failures returns the failed results.
func (o *Outcome) Failures() []RecordResult {
	var failed []RecordResult
	for _, r := range o.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Skipped returns the number of writes suppressed by dry-run.
func (o *Outcome) Skipped() int {
	n := 0
	for _, r := range o.Results {
		if r.Status == StatusSkipped {
			n++
		}
	}
	return n
}

// HasErrors returns true if any record failed.
func (o *Outcome) HasErrors() bool {
	return len(o.Failures()) > 0
}

// Changed returns true if at least one write succeeded.
func (o *Outcome) Changed() bool {
	return o.Created()+o.Updated() > 0
}

// Summary returns a one-line description of the outcome.
func (o *Outcome) Summary() string {
	mode := "applied"
	if o.DryRun {
		mode = "dry-run"
	}
	return fmt.Sprintf("%s %s=%s (%s): created=%d updated=%d unchanged=%d skipped=%d failed=%d in %s",
		o.Domain, o.Type, o.Value, mode,
		o.Created(), o.Updated(), o.Unchanged(), o.Skipped(), len(o.Failures()),
		o.Duration().Round(time.Millisecond))
}
