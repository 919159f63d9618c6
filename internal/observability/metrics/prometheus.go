// Package metrics provides Prometheus metrics for the pharmacy workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StockAdjustments counts applied ledger adjustments by action
	StockAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_stock_adjustments_total",
		Help: "Total applied stock adjustments",
	}, []string{"action"})

	// StockAdjustmentsRejected counts adjustments rejected for
	// insufficient stock; nothing is written for these
	StockAdjustmentsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_stock_adjustments_rejected_total",
		Help: "Total stock adjustments rejected for insufficient stock",
	})

	// AlertsCreated counts derived alerts by type and severity
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_alerts_created_total",
		Help: "Total alerts created by the deriver",
	}, []string{"alert_type", "severity"})

	// NotificationsSent counts delivered notifications
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_notifications_sent_total",
		Help: "Total notifications delivered to the messaging channel",
	})

	// NotificationsFailed counts suppressed or failed notification attempts
	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_notifications_failed_total",
		Help: "Total notification deliveries that failed",
	})

	// PrescriptionsFulfilled counts completed fulfillments
	PrescriptionsFulfilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_prescriptions_fulfilled_total",
		Help: "Total prescriptions fulfilled",
	})

	// FulfillmentDuration measures the fulfillment transaction duration
	FulfillmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pharmacy_fulfillment_duration_seconds",
		Help:    "Prescription fulfillment duration",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})
)
