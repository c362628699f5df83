// Package perf collects opt-in timing samples and counters for the session
// and screen hot paths. Set PTYHOST_PERF=1 to enable; summaries go to the log.
package perf

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

// Names used across the module.
const (
	CounterPTYReadBytes  = "pty_read_bytes"
	CounterPTYWriteBytes = "pty_write_bytes"
	CounterParseAnomaly  = "vterm_parse_anomaly"
	TimerVTermFeed       = "vterm_feed"
	defaultSampleWindow  = 256
	defaultLogIntervalMs = 5000
	envEnable            = "PTYHOST_PERF"
	envIntervalMs        = "PTYHOST_PERF_INTERVAL_MS"
)

type stat struct {
	mu      sync.Mutex
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration
	idx     int
	full    bool
}

// StatSnapshot is a point-in-time view of one timer.
type StatSnapshot struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	P95   time.Duration
}

// CounterSnapshot is a point-in-time view of one counter.
type CounterSnapshot struct {
	Name  string
	Value int64
}

var (
	enabled     atomic.Bool
	logInterval atomic.Int64
	lastLog     atomic.Int64

	statsMu  sync.Mutex
	statsMap = map[string]*stat{}

	countersMu sync.Mutex
	counterMap = map[string]*atomic.Int64{}
)

func init() {
	enabled.Store(envEnabled())
	logInterval.Store(int64(envLogInterval()))
}

// Enabled reports whether collection is on.
func Enabled() bool {
	return enabled.Load()
}

// Time returns a function that records elapsed time when invoked.
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		Record(name, time.Since(start))
	}
}

// Record captures a duration sample for the given name.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	s := getStat(name)
	s.mu.Lock()
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	if s.samples == nil {
		s.samples = make([]time.Duration, defaultSampleWindow)
	}
	s.samples[s.idx] = d
	s.idx++
	if s.idx >= len(s.samples) {
		s.idx = 0
		s.full = true
	}
	s.mu.Unlock()

	maybeLog()
}

// Count increments a named counter by delta.
func Count(name string, delta int64) {
	if !enabled.Load() {
		return
	}
	getCounter(name).Add(delta)
	maybeLog()
}

func getStat(name string) *stat {
	statsMu.Lock()
	defer statsMu.Unlock()
	s, ok := statsMap[name]
	if !ok {
		s = &stat{}
		statsMap[name] = s
	}
	return s
}

func getCounter(name string) *atomic.Int64 {
	countersMu.Lock()
	defer countersMu.Unlock()
	c, ok := counterMap[name]
	if !ok {
		c = &atomic.Int64{}
		counterMap[name] = c
	}
	return c
}

func maybeLog() {
	interval := time.Duration(logInterval.Load())
	if interval <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && time.Duration(now-last) < interval {
		return
	}
	if !lastLog.CompareAndSwap(last, now) {
		return
	}
	logSummary("PERF")
}

// Flush logs a summary of current stats/counters immediately.
func Flush(reason string) {
	if !enabled.Load() {
		return
	}
	prefix := "PERF SUMMARY"
	if strings.TrimSpace(reason) != "" {
		prefix = fmt.Sprintf("PERF SUMMARY %s", reason)
	}
	logSummary(prefix)
}

func logSummary(prefix string) {
	stats, counters := Snapshot()
	for _, s := range stats {
		logging.Info("%s %s count=%d avg=%s p95=%s min=%s max=%s",
			prefix, s.Name, s.Count, s.Avg, s.P95, s.Min, s.Max)
	}
	for _, c := range counters {
		logging.Info("%s %s count=%d", prefix, c.Name, c.Value)
	}
}

// Snapshot returns current stats/counters sorted by name and resets them.
func Snapshot() ([]StatSnapshot, []CounterSnapshot) {
	statsMu.Lock()
	statList := make(map[string]*stat, len(statsMap))
	for name, s := range statsMap {
		statList[name] = s
	}
	statsMu.Unlock()

	stats := make([]StatSnapshot, 0, len(statList))
	for name, s := range statList {
		s.mu.Lock()
		if s.count == 0 {
			s.mu.Unlock()
			continue
		}
		snap := StatSnapshot{
			Name:  name,
			Count: s.count,
			Avg:   time.Duration(int64(s.total) / s.count),
			Min:   s.min,
			Max:   s.max,
			P95:   computeP95(s.samples, s.idx, s.full),
		}
		s.count, s.total, s.min, s.max, s.idx, s.full = 0, 0, 0, 0, 0, false
		s.mu.Unlock()
		stats = append(stats, snap)
	}

	countersMu.Lock()
	counters := make([]CounterSnapshot, 0, len(counterMap))
	for name, c := range counterMap {
		if v := c.Swap(0); v != 0 {
			counters = append(counters, CounterSnapshot{Name: name, Value: v})
		}
	}
	countersMu.Unlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })
	return stats, counters
}

func computeP95(samples []time.Duration, idx int, full bool) time.Duration {
	n := idx
	if full {
		n = len(samples)
	}
	if n == 0 {
		return 0
	}
	window := make([]time.Duration, n)
	copy(window, samples[:n])
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	pos := int(math.Ceil(0.95*float64(n))) - 1
	if pos < 0 {
		pos = 0
	}
	return window[pos]
}

func envEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envEnable))) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

func envLogInterval() time.Duration {
	interval := defaultLogIntervalMs
	if raw := strings.TrimSpace(os.Getenv(envIntervalMs)); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			interval = val
		}
	}
	return time.Duration(interval) * time.Millisecond
}
