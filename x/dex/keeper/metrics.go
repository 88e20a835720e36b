package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DEXMetrics holds all Prometheus metrics for the DEX module
type DEXMetrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapLatency       prometheus.Histogram
	SwapFeesCollected *prometheus.CounterVec
	SlippageRejects   *prometheus.CounterVec

	// Routing metrics
	RouteSearches *prometheus.CounterVec
	RouteHops     prometheus.Histogram

	// Liquidity metrics
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	LPTokenSupply    *prometheus.GaugeVec

	// Pool metrics
	PoolsTotal          prometheus.Gauge
	PoolHalted          *prometheus.GaugeVec
	InvariantViolations *prometheus.CounterVec
}

var (
	dexMetricsOnce sync.Once
	dexMetrics     *DEXMetrics
)

// NewDEXMetrics creates and registers DEX metrics (singleton pattern)
func NewDEXMetrics() *DEXMetrics {
	dexMetricsOnce.Do(func() {
		dexMetrics = &DEXMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "swaps_total",
					Help:      "Total number of swaps by outcome",
				},
				[]string{"kind", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pool_id", "denom"},
			),
			SwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "swap_latency_seconds",
					Help:      "Swap execution latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "swap_fees_collected_total",
					Help:      "Total swap fees retained by pools",
				},
				[]string{"pool_id", "denom"},
			),
			SlippageRejects: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "slippage_rejections_total",
					Help:      "Trades rejected because the re-quote missed the caller's bound",
				},
				[]string{"kind"},
			),
			RouteSearches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "route_searches_total",
					Help:      "Route searches by result",
				},
				[]string{"result"},
			),
			RouteHops: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "route_hops",
					Help:      "Number of hops of selected routes",
					Buckets:   []float64{1, 2, 3},
				},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity added to pools",
				},
				[]string{"pool_id", "denom"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removed from pools",
				},
				[]string{"pool_id", "denom"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "pool_reserves",
					Help:      "Current pool reserves",
				},
				[]string{"pool_id", "denom"},
			),
			LPTokenSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "lp_token_supply",
					Help:      "Total LP shares per pool",
				},
				[]string{"pool_id"},
			),
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "pools_total",
					Help:      "Total number of pools",
				},
			),
			PoolHalted: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "pool_halted",
					Help:      "1 when the pool rejects writes",
				},
				[]string{"pool_id"},
			),
			InvariantViolations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "dex",
					Name:      "invariant_violations_total",
					Help:      "Detected pool invariant violations",
				},
				[]string{"pool_id", "operation"},
			),
		}
	})
	return dexMetrics
}
