package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/matrixise/balance-board/internal/board"
)

// SourceChecker verifies the snapshot files can be read
type SourceChecker interface {
	Check(ctx context.Context) error
}

// RefreshTracker reports the outcome of board refreshes
type RefreshTracker interface {
	Status() board.Status
}

// Checker performs health checks on the snapshot source and refresh loop
type Checker struct {
	source   SourceChecker
	tracker  RefreshTracker
	interval time.Duration
	now      func() time.Time
	started  time.Time
}

// NewChecker creates a new health checker. interval is the expected time
// between refreshes, zero when refreshes are not scheduled.
func NewChecker(source SourceChecker, tracker RefreshTracker, interval time.Duration) *Checker {
	return &Checker{
		source:   source,
		tracker:  tracker,
		interval: interval,
		now:      time.Now,
		started:  time.Now(),
	}
}

// CheckStatus represents the health status of a component
type CheckStatus string

const (
	StatusOK       CheckStatus = "ok"
	StatusDegraded CheckStatus = "degraded"
	StatusError    CheckStatus = "error"
)

// Response is the JSON health report
type Response struct {
	Status    CheckStatus            `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckDetail `json:"checks"`
	Uptime    string                 `json:"uptime,omitempty"`
}

// CheckDetail contains details about a specific health check
type CheckDetail struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Check performs all health checks and returns the aggregated status
func (c *Checker) Check(ctx context.Context) Response {
	checks := make(map[string]CheckDetail)
	overall := StatusOK

	source := c.checkSource(ctx)
	checks["snapshot_files"] = source
	if source.Status != StatusOK {
		overall = StatusDegraded
	}

	refresh := c.checkRefresh()
	checks["refresh"] = refresh
	switch {
	case refresh.Status == StatusError:
		overall = StatusError
	case refresh.Status == StatusDegraded && overall == StatusOK:
		overall = StatusDegraded
	}

	return Response{
		Status:    overall,
		Timestamp: c.now().UTC(),
		Checks:    checks,
		Uptime:    c.now().Sub(c.started).Round(time.Second).String(),
	}
}

// checkSource stats the snapshot files
func (c *Checker) checkSource(ctx context.Context) CheckDetail {
	if err := c.source.Check(ctx); err != nil {
		slog.Warn("Health check: snapshot files unreadable", "error", err)
		return CheckDetail{
			Status:  StatusDegraded,
			Message: "snapshot files unreadable: " + err.Error(),
		}
	}
	return CheckDetail{Status: StatusOK, Message: "snapshot files readable"}
}

// checkRefresh verifies rows were published and are not stale
func (c *Checker) checkRefresh() CheckDetail {
	st := c.tracker.Status()

	if !st.Ready {
		if st.LastError != "" {
			return CheckDetail{Status: StatusError, Message: "no rows published: " + st.LastError}
		}
		return CheckDetail{Status: StatusError, Message: "no rows published yet"}
	}

	if st.LastError != "" {
		return CheckDetail{Status: StatusDegraded, Message: "last refresh failed: " + st.LastError}
	}

	since := c.now().Sub(st.LastSuccess)
	if c.interval > 0 && since > 2*c.interval {
		return CheckDetail{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("no refresh in %s (expected every %s)", since.Round(time.Second), c.interval),
		}
	}

	return CheckDetail{
		Status:  StatusOK,
		Message: fmt.Sprintf("last refreshed %s ago", since.Round(time.Second)),
	}
}

// Handler returns an http.HandlerFunc for the health endpoint
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := c.Check(r.Context())

		statusCode := http.StatusOK
		if status.Status == StatusError {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(status); err != nil {
			slog.Error("Failed to encode health response", "error", err)
		}
	}
}
