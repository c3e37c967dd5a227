package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TrackerMetrics holds all Prometheus metrics for balance trackers, labelled by tracker name
type TrackerMetrics struct {
	Deposits      *prometheus.CounterVec
	Reservations  *prometheus.CounterVec
	Finalizations *prometheus.CounterVec
	FeesCollected *prometheus.CounterVec
	Payouts       *prometheus.CounterVec
	Drains        *prometheus.CounterVec
	Refunds       *prometheus.CounterVec
}

var (
	trackerMetricsOnce sync.Once
	trackerMetrics     *TrackerMetrics
)

// NewTrackerMetrics creates and registers tracker metrics (singleton pattern)
func NewTrackerMetrics() *TrackerMetrics {
	trackerMetricsOnce.Do(func() {
		counter := func(name, help string) *prometheus.CounterVec {
			return promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "balancetracker",
					Name:      name,
					Help:      help,
				},
				[]string{"tracker"},
			)
		}

		trackerMetrics = &TrackerMetrics{
			Deposits:      counter("deposits_total", "Total prepaid deposits"),
			Reservations:  counter("reservations_total", "Total delivery rate reservations"),
			Finalizations: counter("finalizations_total", "Total finalized deliveries"),
			FeesCollected: counter("fees_collected_total", "Total protocol fees collected, in tracker units"),
			Payouts:       counter("payouts_total", "Total mech payouts"),
			Drains:        counter("drains_total", "Total fee drains"),
			Refunds:       counter("refunds_total", "Total requester withdrawals and credit redemptions"),
		}
	})
	return trackerMetrics
}

func amountToFloat(amount math.Int) float64 {
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float64()
	return f
}
