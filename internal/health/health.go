// Package health aggregates named checks for the upstream providers and
// the invocation journal into the /health report.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 5 * time.Second

// Status represents the health of a single subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker is a function that checks the health of a subsystem.
type Checker func(ctx context.Context) Status

// Registry holds named health checkers and runs them on demand.
type Registry struct {
	mu       sync.RWMutex
	checkers []namedChecker
	timeout  time.Duration
	version  string
}

type namedChecker struct {
	name  string
	check Checker
}

// Report is the JSON body served by Handler.
type Report struct {
	Status    string   `json:"status"`
	Version   string   `json:"version,omitempty"`
	Checks    []Status `json:"checks"`
	Timestamp string   `json:"timestamp"`
}

// NewRegistry creates a new health check registry.
func NewRegistry(version string) *Registry {
	return &Registry{timeout: DefaultCheckTimeout, version: version}
}

// SetTimeout overrides the per-check timeout.
func (r *Registry) SetTimeout(d time.Duration) {
	r.mu.Lock()
	r.timeout = d
	r.mu.Unlock()
}

// Register adds a named health checker.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, namedChecker{name: name, check: check})
	r.mu.Unlock()
}

// CheckAll runs all registered checkers in registration order and returns
// the aggregate health status plus individual subsystem results.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	checkers := make([]namedChecker, len(r.checkers))
	copy(checkers, r.checkers)
	timeout := r.timeout
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(checkers))

	for i, nc := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		st := nc.check(checkCtx)
		cancel()
		if st.Name == "" {
			st.Name = nc.name
		}
		statuses[i] = st
		if !st.Healthy {
			healthy = false
		}
	}

	return healthy, statuses
}

// Handler serves the aggregate report: 200 when every check passes,
// 503 ("degraded") otherwise.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		healthy, statuses := r.CheckAll(c.Request.Context())

		report := Report{
			Status:    "healthy",
			Version:   r.version,
			Checks:    statuses,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		if !healthy {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}
