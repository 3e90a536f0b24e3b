package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DomainResult is the per-domain line of a cycle report.
type DomainResult struct {
	Domain  string `json:"domain"`
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CycleReport describes one completed update cycle.
type CycleReport struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Duration string         `json:"duration"`
	Failed   int            `json:"failed"`
	Domains  []DomainResult `json:"domains"`
}

// CycleStatus is the body of /status.
type CycleStatus struct {
	Cycles      int          `json:"cycles"`
	LastSuccess *time.Time   `json:"last_success,omitempty"`
	Last        *CycleReport `json:"last,omitempty"`
}

// CycleTracker remembers the outcome of the daemon's update cycles.
type CycleTracker struct {
	mu          sync.RWMutex
	now         func() time.Time
	cycles      int
	lastSuccess time.Time
	last        *CycleReport
}

// NewCycleTracker creates an empty tracker. A nil clock uses time.Now.
func NewCycleTracker(now func() time.Time) *CycleTracker {
	if now == nil {
		now = time.Now
	}
	return &CycleTracker{now: now}
}

// Record stores a finished cycle. A cycle without failed domains counts
// as a success.
func (t *CycleTracker) Record(report CycleReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cycles++
	rep := report
	rep.Domains = append([]DomainResult(nil), report.Domains...)
	t.last = &rep
	if rep.Failed == 0 {
		t.lastSuccess = t.now()
	}
}

// Status returns a snapshot for /status.
func (t *CycleTracker) Status() CycleStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := CycleStatus{Cycles: t.cycles}
	if !t.lastSuccess.IsZero() {
		ls := t.lastSuccess
		st.LastSuccess = &ls
	}
	if t.last != nil {
		rep := *t.last
		rep.Domains = append([]DomainResult(nil), t.last.Domains...)
		st.Last = &rep
	}
	return st
}

// StatusFunc adapts the tracker for WithStatus.
func (t *CycleTracker) StatusFunc() StatusFunc {
	return func() any { return t.Status() }
}

// Checker fails while no cycle has succeeded within maxAge. Before the
// first cycle completes the daemon is reported as not ready.
func (t *CycleTracker) Checker(maxAge time.Duration) HealthChecker {
	return func(context.Context) error {
		t.mu.RLock()
		defer t.mu.RUnlock()

		if t.cycles == 0 {
			return errors.New("no update cycle completed yet")
		}
		if t.lastSuccess.IsZero() {
			return fmt.Errorf("no successful update cycle in %d attempts", t.cycles)
		}
		if age := t.now().Sub(t.lastSuccess); age > maxAge {
			return fmt.Errorf("last successful update cycle was %s ago", age.Round(time.Second))
		}
		return nil
	}
}

// Degraded reports when the most recent cycle had failed domains.
func (t *CycleTracker) Degraded() DegradedChecker {
	return func(context.Context) (bool, string) {
		t.mu.RLock()
		defer t.mu.RUnlock()

		if t.last == nil || t.last.Failed == 0 {
			return false, ""
		}
		return true, fmt.Sprintf("%d of %d domains failed in run %s", t.last.Failed, len(t.last.Domains), t.last.RunID)
	}
}
