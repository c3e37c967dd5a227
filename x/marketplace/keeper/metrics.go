package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	deliveryPathDirect    = "direct"
	deliveryPathSignature = "signature"
)

// MarketplaceMetrics holds all Prometheus metrics for the marketplace module
type MarketplaceMetrics struct {
	RequestsSubmitted  *prometheus.CounterVec
	Deliveries         *prometheus.CounterVec
	FallbackDeliveries prometheus.Counter
	SkippedDeliveries  prometheus.Counter
	SignatureFailures  prometheus.Counter
	MechsCreated       *prometheus.CounterVec
}

var (
	marketplaceMetricsOnce sync.Once
	marketplaceMetrics     *MarketplaceMetrics
)

// NewMarketplaceMetrics creates and registers marketplace metrics (singleton pattern)
func NewMarketplaceMetrics() *MarketplaceMetrics {
	marketplaceMetricsOnce.Do(func() {
		marketplaceMetrics = &MarketplaceMetrics{
			RequestsSubmitted: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "requests_total",
					Help:      "Total requests recorded",
				},
				[]string{"payment_type"},
			),
			Deliveries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "deliveries_total",
					Help:      "Total deliveries recorded",
				},
				[]string{"path"},
			),
			FallbackDeliveries: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "fallback_deliveries_total",
					Help:      "Deliveries made by a mech other than the priority mech",
				},
			),
			SkippedDeliveries: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "skipped_deliveries_total",
					Help:      "Delivery attempts against already delivered requests",
				},
			),
			SignatureFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "signature_failures_total",
					Help:      "Rejected signature-delegated deliveries",
				},
			),
			MechsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mechx",
					Subsystem: "marketplace",
					Name:      "mechs_created_total",
					Help:      "Total mechs created",
				},
				[]string{"payment_type"},
			),
		}
	})
	return marketplaceMetrics
}
