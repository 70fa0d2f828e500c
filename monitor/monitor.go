// Package monitor collects cache operation records and turns them into
// performance reports and tuning recommendations.
package monitor

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of a recorded cache operation
type Kind string

const (
	KindGet     Kind = "get"
	KindSet     Kind = "set"
	KindRemove  Kind = "remove"
	KindClear   Kind = "clear"
	KindRefresh Kind = "refresh"
	KindExists  Kind = "exists"
)

// Operation is a single recorded cache operation
type Operation struct {
	ID        string
	CacheName string
	Kind      Kind
	Key       string
	Timestamp time.Time
	Duration  time.Duration
	Success   bool
	Hit       bool
	Error     string
}

// Report summarizes the operations currently held in the sample window
type Report struct {
	TotalOperations int
	HitRate         float64
	AverageLatency  time.Duration
	P95Latency      time.Duration
	P99Latency      time.Duration
	ErrorRate       float64
	OperationCounts map[Kind]int
}

// Severity ranks a recommendation
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Recommendation is advisory tuning output; it is never auto-applied
type Recommendation struct {
	Severity Severity
	Message  string
}

// Thresholds that trigger recommendations
const (
	minHitRate     = 0.7
	maxAvgLatency  = 100 * time.Millisecond
	maxErrorRate   = 0.05
	minSampleCount = 10
)

// PerformanceMonitor ingests operation records into a bounded ring buffer.
// Oldest records are dropped past capacity: the buffer is a sample window,
// not an audit log.
type PerformanceMonitor struct {
	mu   sync.RWMutex
	ops  []Operation
	next int
	full bool

	metrics  *Metrics
	observer func(Operation)
	logger   *slog.Logger
}

// Option configures the PerformanceMonitor
type Option func(*PerformanceMonitor)

// WithBufferSize sets the sample window capacity (default: 10000)
func WithBufferSize(n int) Option {
	return func(m *PerformanceMonitor) {
		if n > 0 {
			m.ops = make([]Operation, n)
		}
	}
}

// WithMetrics exports every recorded operation to Prometheus collectors
func WithMetrics(metrics *Metrics) Option {
	return func(m *PerformanceMonitor) {
		m.metrics = metrics
	}
}

// WithObserver registers a callback invoked for every recorded operation
func WithObserver(fn func(Operation)) Option {
	return func(m *PerformanceMonitor) {
		m.observer = fn
	}
}

// NewPerformanceMonitor creates a monitor with default options
func NewPerformanceMonitor(opts ...Option) *PerformanceMonitor {
	m := &PerformanceMonitor{
		ops:    make([]Operation, 10000),
		logger: slog.Default().With("component", "cache-monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record ingests one operation. A missing ID or timestamp is filled in.
func (m *PerformanceMonitor) Record(op Operation) {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.ops[m.next] = op
	m.next++
	if m.next == len(m.ops) {
		m.next = 0
		m.full = true
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.observe(op)
	}
	if m.observer != nil {
		m.observer(op)
	}
}

// snapshot copies the live records out of the ring buffer
func (m *PerformanceMonitor) snapshot() []Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.next
	if m.full {
		n = len(m.ops)
	}
	ops := make([]Operation, n)
	if m.full {
		copy(ops, m.ops[m.next:])
		copy(ops[len(m.ops)-m.next:], m.ops[:m.next])
	} else {
		copy(ops, m.ops[:n])
	}
	return ops
}

// Report computes aggregate statistics over the current sample window
func (m *PerformanceMonitor) Report() Report {
	ops := m.snapshot()

	report := Report{
		TotalOperations: len(ops),
		OperationCounts: make(map[Kind]int),
	}
	if len(ops) == 0 {
		return report
	}

	var (
		hits, gets, failed int
		total              time.Duration
		durations          = make([]time.Duration, 0, len(ops))
	)
	for _, op := range ops {
		report.OperationCounts[op.Kind]++
		total += op.Duration
		durations = append(durations, op.Duration)
		if !op.Success {
			failed++
		}
		if op.Kind == KindGet {
			gets++
			if op.Hit {
				hits++
			}
		}
	}

	if gets > 0 {
		report.HitRate = float64(hits) / float64(gets)
	}
	report.AverageLatency = total / time.Duration(len(ops))
	report.ErrorRate = float64(failed) / float64(len(ops))

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	report.P95Latency = percentile(durations, 0.95)
	report.P99Latency = percentile(durations, 0.99)

	return report
}

// Recommendations derives advisory tuning hints from the current report.
// Nothing is emitted until a minimum sample has accumulated.
func (m *PerformanceMonitor) Recommendations() []Recommendation {
	report := m.Report()
	if report.TotalOperations < minSampleCount {
		return nil
	}

	var recs []Recommendation
	if report.OperationCounts[KindGet] > 0 && report.HitRate < minHitRate {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("hit rate %.0f%% is below %.0f%%: increase TTL or cache size",
				report.HitRate*100, minHitRate*100),
		})
	}
	if report.AverageLatency > maxAvgLatency {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("average latency %s exceeds %s: investigate backend",
				report.AverageLatency, maxAvgLatency),
		})
	}
	if report.ErrorRate > maxErrorRate {
		recs = append(recs, Recommendation{
			Severity: SeverityCritical,
			Message: fmt.Sprintf("error rate %.1f%% exceeds %.0f%%: check backend health",
				report.ErrorRate*100, maxErrorRate*100),
		})
	}
	return recs
}

// percentile returns the p-th percentile of sorted durations
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted))*p+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
