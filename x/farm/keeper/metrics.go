package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FarmMetrics holds all Prometheus metrics for the farm module
type FarmMetrics struct {
	Operations        *prometheus.CounterVec
	RewardsPaid       *prometheus.CounterVec
	RewardsAllocated  *prometheus.CounterVec
	TotalStaked       *prometheus.GaugeVec
	AccRewardPerShare *prometheus.GaugeVec
	FarmsTotal        prometheus.Gauge
	InvariantFailures prometheus.Counter
}

var (
	farmMetricsOnce sync.Once
	farmMetrics     *FarmMetrics
)

// NewFarmMetrics creates and registers farm metrics (singleton pattern)
func NewFarmMetrics() *FarmMetrics {
	farmMetricsOnce.Do(func() {
		farmMetrics = &FarmMetrics{
			Operations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "operations_total",
					Help:      "Farm operations by action and outcome",
				},
				[]string{"action", "status"},
			),
			RewardsPaid: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "rewards_paid_total",
					Help:      "Rewards paid out by harvest, compound and unstake",
				},
				[]string{"farm_id", "denom"},
			),
			RewardsAllocated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "rewards_allocated_total",
					Help:      "Rewards moved from budget into the accumulator",
				},
				[]string{"farm_id", "denom"},
			),
			TotalStaked: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "total_staked",
					Help:      "Total stake per farm in base units",
				},
				[]string{"farm_id", "denom"},
			),
			AccRewardPerShare: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "acc_reward_per_share",
					Help:      "Reward-per-share accumulator, unscaled",
				},
				[]string{"farm_id"},
			),
			FarmsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "farms",
					Help:      "Number of farms",
				},
			),
			InvariantFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "farm",
					Name:      "invariant_failures_total",
					Help:      "Farm invariant check failures",
				},
			),
		}
	})
	return farmMetrics
}
