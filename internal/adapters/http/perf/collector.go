package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 8192

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // HTTP "METHOD /path" or store op name
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries. Writes are
// cheap and never block on aggregation; aggregation happens on Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	total   int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry, overwriting the oldest when the buffer is full.
// PRE: e is a valid Entry
// POST: Entry stored; total count incremented
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.total, 1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.total)
}

// RouteStat aggregates timing for a single route or store operation.
type RouteStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors"` // 5xx responses
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRequests int64       `json:"total_requests"`
	RequestP50Ms  float64     `json:"request_p50_ms"`
	RequestP95Ms  float64     `json:"request_p95_ms"`
	RequestP99Ms  float64     `json:"request_p99_ms"`
	BusiestRoutes []RouteStat `json:"busiest_routes"`
	SlowestOps    []RouteStat `json:"slowest_ops"`
}

// Snapshot aggregates the ring buffer into percentiles and top-N lists.
// Sorting makes this comparatively expensive; call it from the perf
// endpoint only, never on the request hot path.
// PRE: topN > 0
// POST: Returns a Snapshot covering entries recorded at or after since
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations []float64
	requests := make(map[string]*RouteStat)
	queries := make(map[string]*RouteStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		byPath := queries
		if e.Kind == KindRequest {
			byPath = requests
			requestDurations = append(requestDurations, e.DurationMs)
		}
		s, ok := byPath[e.Path]
		if !ok {
			s = &RouteStat{Path: e.Path}
			byPath[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
		if e.Kind == KindRequest && e.StatusCode >= 500 {
			s.Errors++
		}
	}

	for _, s := range requests {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	for _, s := range queries {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}

	snap := Snapshot{
		TotalRequests: c.TotalRecorded(),
		BusiestRoutes: topByTotal(requests, topN),
		SlowestOps:    topByTotal(queries, topN),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice, interpolating
// between adjacent samples.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByTotal returns the top N stats by cumulative time (descending).
func topByTotal(stats map[string]*RouteStat, n int) []RouteStat {
	list := make([]RouteStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].TotalMs > list[j].TotalMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
