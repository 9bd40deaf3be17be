package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PoolParty Metrics Collector
// Provides comprehensive metrics for monitoring

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all PoolParty metrics
type Collector struct {
	// Pool metrics
	PoolsTotal       prometheus.Counter
	PoolsByPhase     *prometheus.GaugeVec
	PhaseTransitions *prometheus.CounterVec

	// Contribution metrics
	ContributionsTotal *prometheus.CounterVec
	ContributionValue  *prometheus.CounterVec
	WithdrawalsTotal   *prometheus.CounterVec
	WithdrawalFees     *prometheus.CounterVec
	KicksTotal         *prometheus.CounterVec
	ParticipantsActive *prometheus.GaugeVec

	// Release metrics
	ReleasesTotal  *prometheus.CounterVec
	ReleaseValue   *prometheus.CounterVec
	SubsidyValue   *prometheus.CounterVec
	FeeValue       *prometheus.CounterVec
	SaleCallsTotal *prometheus.CounterVec

	// Claim metrics
	TokenClaimsTotal  *prometheus.CounterVec
	TokensClaimed     *prometheus.CounterVec
	RefundClaimsTotal *prometheus.CounterVec
	RefundsClaimed    *prometheus.CounterVec

	// Identity oracle metrics
	OracleResolutionsTotal *prometheus.CounterVec
	OracleLatency          *prometheus.HistogramVec
	OracleCacheHits        *prometheus.CounterVec

	// WebSocket metrics
	WSConnectionsActive *prometheus.GaugeVec
	WSMessagesTotal     *prometheus.CounterVec
	WSSubscriptions     *prometheus.GaugeVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	APIErrorsTotal    *prometheus.CounterVec
	RateLimitHits     *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
	BlockTime   *prometheus.HistogramVec
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Pool metrics
	c.PoolsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "pools",
			Name:      "total",
			Help:      "Total number of pools created",
		},
	)

	c.PoolsByPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "poolparty",
			Subsystem: "pools",
			Name:      "by_phase",
			Help:      "Number of pools in each phase",
		},
		[]string{"phase"},
	)

	c.PhaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "pools",
			Name:      "phase_transitions_total",
			Help:      "Total pool phase transitions",
		},
		[]string{"from", "to"},
	)

	// Contribution metrics
	c.ContributionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "total",
			Help:      "Total number of contributions",
		},
		[]string{"pool_id"},
	)

	c.ContributionValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "value_wei",
			Help:      "Total contributed value in wei",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "withdrawals_total",
			Help:      "Total number of voluntary withdrawals",
		},
		[]string{"pool_id", "phase"},
	)

	c.WithdrawalFees = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "withdrawal_fees_wei",
			Help:      "Total withdrawal fees collected in wei",
		},
		[]string{"pool_id"},
	)

	c.KicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "kicks_total",
			Help:      "Total participants removed by the configurator",
		},
		[]string{"pool_id", "reason"},
	)

	c.ParticipantsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "poolparty",
			Subsystem: "contributions",
			Name:      "participants_active",
			Help:      "Number of active participants per pool",
		},
		[]string{"pool_id"},
	)

	// Release metrics
	c.ReleasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "releases",
			Name:      "total",
			Help:      "Total number of fund releases",
		},
		[]string{"pool_id"},
	)

	c.ReleaseValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "releases",
			Name:      "value_wei",
			Help:      "Total value released to sales in wei",
		},
		[]string{"pool_id"},
	)

	c.SubsidyValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "releases",
			Name:      "subsidy_wei",
			Help:      "Total subsidy attached at release in wei",
		},
		[]string{"pool_id"},
	)

	c.FeeValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "releases",
			Name:      "fee_wei",
			Help:      "Total release fees collected in wei",
		},
		[]string{"pool_id"},
	)

	c.SaleCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "releases",
			Name:      "sale_calls_total",
			Help:      "Total external sale calls by selector and outcome",
		},
		[]string{"selector", "outcome"},
	)

	// Claim metrics
	c.TokenClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "claims",
			Name:      "token_claims_total",
			Help:      "Total token claims by participants",
		},
		[]string{"pool_id"},
	)

	c.TokensClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "claims",
			Name:      "tokens_claimed",
			Help:      "Total tokens paid out to participants",
		},
		[]string{"pool_id"},
	)

	c.RefundClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "claims",
			Name:      "refund_claims_total",
			Help:      "Total refund claims by participants",
		},
		[]string{"pool_id"},
	)

	c.RefundsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "claims",
			Name:      "refunds_claimed_wei",
			Help:      "Total refunds paid out in wei",
		},
		[]string{"pool_id"},
	)

	// Identity oracle metrics
	c.OracleResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "oracle",
			Name:      "resolutions_total",
			Help:      "Total identity resolutions by outcome",
		},
		[]string{"outcome"},
	)

	c.OracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poolparty",
			Subsystem: "oracle",
			Name:      "latency_ms",
			Help:      "Identity resolution latency in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2000},
		},
		[]string{"source"},
	)

	c.OracleCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "oracle",
			Name:      "cache_hits_total",
			Help:      "Total identity cache lookups by result",
		},
		[]string{"result"},
	)

	// WebSocket metrics
	c.WSConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "poolparty",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
		[]string{},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	c.WSSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "poolparty",
			Subsystem: "websocket",
			Name:      "subscriptions",
			Help:      "Number of active subscriptions per channel",
		},
		[]string{"channel"},
	)

	// API metrics
	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poolparty",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Total API errors",
		},
		[]string{"method", "path", "error_type"},
	)

	c.RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolparty",
			Subsystem: "api",
			Name:      "rate_limit_hits",
			Help:      "Total rate limit hits",
		},
		[]string{"limit_type"},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "poolparty",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poolparty",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block time in milliseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000},
		},
		[]string{},
	)

	// Register all metrics
	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	// Pool metrics
	prometheus.MustRegister(c.PoolsTotal)
	prometheus.MustRegister(c.PoolsByPhase)
	prometheus.MustRegister(c.PhaseTransitions)

	// Contribution metrics
	prometheus.MustRegister(c.ContributionsTotal)
	prometheus.MustRegister(c.ContributionValue)
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalFees)
	prometheus.MustRegister(c.KicksTotal)
	prometheus.MustRegister(c.ParticipantsActive)

	// Release metrics
	prometheus.MustRegister(c.ReleasesTotal)
	prometheus.MustRegister(c.ReleaseValue)
	prometheus.MustRegister(c.SubsidyValue)
	prometheus.MustRegister(c.FeeValue)
	prometheus.MustRegister(c.SaleCallsTotal)

	// Claim metrics
	prometheus.MustRegister(c.TokenClaimsTotal)
	prometheus.MustRegister(c.TokensClaimed)
	prometheus.MustRegister(c.RefundClaimsTotal)
	prometheus.MustRegister(c.RefundsClaimed)

	// Identity oracle metrics
	prometheus.MustRegister(c.OracleResolutionsTotal)
	prometheus.MustRegister(c.OracleLatency)
	prometheus.MustRegister(c.OracleCacheHits)

	// WebSocket metrics
	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)
	prometheus.MustRegister(c.WSSubscriptions)

	// API metrics
	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.APIErrorsTotal)
	prometheus.MustRegister(c.RateLimitHits)

	// System metrics
	prometheus.MustRegister(c.BlockHeight)
	prometheus.MustRegister(c.BlockTime)
}

// ============ Recording Helpers ============

// RecordPoolCreated records a pool creation
func (c *Collector) RecordPoolCreated() {
	c.PoolsTotal.Inc()
}

// RecordPhaseTransition records a pool phase transition
func (c *Collector) RecordPhaseTransition(from, to string) {
	c.PhaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordContribution records a contribution event
func (c *Collector) RecordContribution(poolID string, valueWei float64) {
	c.ContributionsTotal.WithLabelValues(poolID).Inc()
	c.ContributionValue.WithLabelValues(poolID).Add(valueWei)
}

// RecordWithdrawal records a voluntary withdrawal
func (c *Collector) RecordWithdrawal(poolID, phase string, feeWei float64) {
	c.WithdrawalsTotal.WithLabelValues(poolID, phase).Inc()
	if feeWei > 0 {
		c.WithdrawalFees.WithLabelValues(poolID).Add(feeWei)
	}
}

// RecordKick records a participant removal
func (c *Collector) RecordKick(poolID, reason string) {
	c.KicksTotal.WithLabelValues(poolID, reason).Inc()
}

// RecordRelease records a fund release
func (c *Collector) RecordRelease(poolID string, valueWei, subsidyWei, feeWei float64) {
	c.ReleasesTotal.WithLabelValues(poolID).Inc()
	c.ReleaseValue.WithLabelValues(poolID).Add(valueWei)
	c.SubsidyValue.WithLabelValues(poolID).Add(subsidyWei)
	c.FeeValue.WithLabelValues(poolID).Add(feeWei)
}

// RecordSaleCall records an external sale call
func (c *Collector) RecordSaleCall(selector, outcome string) {
	c.SaleCallsTotal.WithLabelValues(selector, outcome).Inc()
}

// RecordTokenClaim records a participant token claim
func (c *Collector) RecordTokenClaim(poolID string, tokens float64) {
	c.TokenClaimsTotal.WithLabelValues(poolID).Inc()
	c.TokensClaimed.WithLabelValues(poolID).Add(tokens)
}

// RecordRefundClaim records a participant refund claim
func (c *Collector) RecordRefundClaim(poolID string, refundWei float64) {
	c.RefundClaimsTotal.WithLabelValues(poolID).Inc()
	c.RefundsClaimed.WithLabelValues(poolID).Add(refundWei)
}

// RecordOracleResolution records an identity resolution
func (c *Collector) RecordOracleResolution(outcome, source string, latencyMs float64) {
	c.OracleResolutionsTotal.WithLabelValues(outcome).Inc()
	c.OracleLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordOracleCacheLookup records an identity cache lookup
func (c *Collector) RecordOracleCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.OracleCacheHits.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.WithLabelValues().Add(float64(delta))
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// RecordWSSubscription records channel subscription changes
func (c *Collector) RecordWSSubscription(channel string, delta int) {
	c.WSSubscriptions.WithLabelValues(channel).Add(float64(delta))
}

// RecordAPIError records a failed API request by class
func (c *Collector) RecordAPIError(method, path, errorType string) {
	c.APIErrorsTotal.WithLabelValues(method, path, errorType).Inc()
}

// RecordRateLimitHit records a rejected request by limit type
func (c *Collector) RecordRateLimitHit(limitType string) {
	c.RateLimitHits.WithLabelValues(limitType).Inc()
}

// RecordBlock records the latest block height and end-of-block processing time
func (c *Collector) RecordBlock(height int64, durationMs float64) {
	c.BlockHeight.Set(float64(height))
	c.BlockTime.WithLabelValues().Observe(durationMs)
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
