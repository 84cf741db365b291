// Package telemetry records what index chains do during a bench or check run.
// Everything stays local: counters live in memory and in a Prometheus registry
// owned by the run, and finished runs are persisted to SQLite.
package telemetry

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Aman-CERP/joinindex/pkg/index"
)

// =============================================================================
// Latency Buckets
// =============================================================================

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketSub1us  LatencyBucket = "lt_1us"   // <1µs
	Bucket10us    LatencyBucket = "lt_10us"  // 1-10µs
	Bucket100us   LatencyBucket = "lt_100us" // 10-100µs
	Bucket1ms     LatencyBucket = "lt_1ms"   // 100µs-1ms
	BucketOver1ms LatencyBucket = "gte_1ms"  // >=1ms
)

// AllBuckets lists latency buckets from fastest to slowest.
var AllBuckets = []LatencyBucket{BucketSub1us, Bucket10us, Bucket100us, Bucket1ms, BucketOver1ms}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Microsecond:
		return BucketSub1us
	case d < 10*time.Microsecond:
		return Bucket10us
	case d < 100*time.Microsecond:
		return Bucket100us
	case d < time.Millisecond:
		return Bucket1ms
	default:
		return BucketOver1ms
	}
}

// isRead reports whether op is a query rather than a mutation.
func isRead(op index.Op) bool {
	return op != index.OpPut && op != index.OpRemove
}

// =============================================================================
// Circular Buffer
// =============================================================================

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // Next write position
	size     int // Current number of items
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in the buffer, oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// =============================================================================
// Snapshot
// =============================================================================

// KeyCount is a queried key and how often it was queried.
type KeyCount struct {
	Chain string `json:"chain"`
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ChainStats aggregates the operations seen on one chain.
type ChainStats struct {
	Chain          string             `json:"chain"`
	Ops            map[index.Op]int64 `json:"ops"`
	Matches        int64              `json:"matches"`
	ZeroMatchReads int64              `json:"zero_match_reads"`
	Elapsed        time.Duration      `json:"elapsed"`
}

// Reads returns the number of query operations.
func (s ChainStats) Reads() int64 {
	var n int64
	for op, c := range s.Ops {
		if isRead(op) {
			n += c
		}
	}
	return n
}

// MetricsSnapshot is an immutable copy of IndexMetrics.
type MetricsSnapshot struct {
	Chains              []ChainStats            `json:"chains"`
	HotKeys             []KeyCount              `json:"hot_keys"`
	RecentMisses        []string                `json:"recent_misses"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalOps            int64                   `json:"total_ops"`
	Since               time.Time               `json:"since"`
}

// Chain returns the stats for name, or false if the chain was never observed.
func (s *MetricsSnapshot) Chain(name string) (ChainStats, bool) {
	for _, c := range s.Chains {
		if c.Chain == name {
			return c, true
		}
	}
	return ChainStats{}, false
}

// ZeroMatchPercentage returns the share of reads that matched nothing.
func (s *MetricsSnapshot) ZeroMatchPercentage() float64 {
	var reads, zero int64
	for _, c := range s.Chains {
		reads += c.Reads()
		zero += c.ZeroMatchReads
	}
	if reads == 0 {
		return 0
	}
	return float64(zero) / float64(reads) * 100
}

// =============================================================================
// Index Metrics
// =============================================================================

// MetricsConfig configures IndexMetrics.
type MetricsConfig struct {
	HotKeysCapacity      int // Max query keys to track (default: 64)
	RecentMissesCapacity int // Max zero-match reads to remember (default: 32)
}

// DefaultMetricsConfig returns sensible defaults.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		HotKeysCapacity:      64,
		RecentMissesCapacity: 32,
	}
}

type hotKey struct {
	chain string
	key   string
}

// IndexMetrics collects per-chain operation telemetry. It implements
// index.Observer and is safe for concurrent use by several chains.
type IndexMetrics struct {
	mu sync.Mutex

	chains       map[string]*ChainStats
	hotKeys      *lru.Cache[hotKey, int64]
	recentMisses *CircularBuffer[string]
	latencies    map[LatencyBucket]int64
	totalOps     int64
	startTime    time.Time

	registry   *prometheus.Registry
	opsTotal   *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	matches    *prometheus.HistogramVec
}

// NewIndexMetrics creates a collector with its own Prometheus registry.
func NewIndexMetrics(cfg MetricsConfig) *IndexMetrics {
	if cfg.HotKeysCapacity <= 0 {
		cfg.HotKeysCapacity = 64
	}
	if cfg.RecentMissesCapacity <= 0 {
		cfg.RecentMissesCapacity = 32
	}
	hot, _ := lru.New[hotKey, int64](cfg.HotKeysCapacity)

	m := &IndexMetrics{
		chains:       make(map[string]*ChainStats),
		hotKeys:      hot,
		recentMisses: NewCircularBuffer[string](cfg.RecentMissesCapacity),
		latencies:    make(map[LatencyBucket]int64),
		startTime:    time.Now(),
		registry:     prometheus.NewRegistry(),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "joinindex",
			Name:      "operations_total",
			Help:      "Index operations by chain and operation.",
		}, []string{"chain", "op"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "joinindex",
			Name:      "operation_duration_seconds",
			Help:      "Index operation latency by chain and operation.",
			Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2},
		}, []string{"chain", "op"}),
		matches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "joinindex",
			Name:      "query_matches",
			Help:      "Tuples returned per query by chain.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"chain"}),
	}
	m.registry.MustRegister(m.opsTotal, m.opDuration, m.matches)
	return m
}

// Observe records one chain operation.
func (m *IndexMetrics) Observe(e index.Event) {
	op := string(e.Op)
	m.opsTotal.WithLabelValues(e.Chain, op).Inc()
	m.opDuration.WithLabelValues(e.Chain, op).Observe(e.Elapsed.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.chains[e.Chain]
	if !ok {
		stats = &ChainStats{Chain: e.Chain, Ops: make(map[index.Op]int64)}
		m.chains[e.Chain] = stats
	}
	stats.Ops[e.Op]++
	stats.Elapsed += e.Elapsed
	m.totalOps++
	m.latencies[LatencyToBucket(e.Elapsed)]++

	if !isRead(e.Op) {
		return
	}
	m.matches.WithLabelValues(e.Chain).Observe(float64(e.Matches))
	stats.Matches += int64(e.Matches)

	k := hotKey{chain: e.Chain, key: FormatKey(e.Key)}
	count, _ := m.hotKeys.Get(k)
	m.hotKeys.Add(k, count+1)

	if e.Matches == 0 && e.Op != index.OpGet {
		stats.ZeroMatchReads++
		m.recentMisses.Add(e.Chain + " " + k.key)
	}
}

// FormatKey renders an index key for reports.
func FormatKey(key any) string {
	return fmt.Sprintf("%v", key)
}

// Snapshot returns current metrics for reporting. Chains are sorted by name
// and hot keys by count, most frequent first.
func (m *IndexMetrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	chains := make([]ChainStats, 0, len(m.chains))
	for _, c := range m.chains {
		cp := *c
		cp.Ops = make(map[index.Op]int64, len(c.Ops))
		for op, n := range c.Ops {
			cp.Ops[op] = n
		}
		chains = append(chains, cp)
	}
	slices.SortFunc(chains, func(a, b ChainStats) int { return cmp.Compare(a.Chain, b.Chain) })

	var hot []KeyCount
	for _, k := range m.hotKeys.Keys() {
		if n, ok := m.hotKeys.Peek(k); ok {
			hot = append(hot, KeyCount{Chain: k.chain, Key: k.key, Count: n})
		}
	}
	slices.SortStableFunc(hot, func(a, b KeyCount) int { return cmp.Compare(b.Count, a.Count) })

	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for b, n := range m.latencies {
		latencies[b] = n
	}

	return &MetricsSnapshot{
		Chains:              chains,
		HotKeys:             hot,
		RecentMisses:        m.recentMisses.Items(),
		LatencyDistribution: latencies,
		TotalOps:            m.totalOps,
		Since:               m.startTime,
	}
}

// Registry exposes the collectors, e.g. for a promhttp handler.
func (m *IndexMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WritePrometheus writes the registry in the Prometheus text exposition format.
func (m *IndexMetrics) WritePrometheus(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
