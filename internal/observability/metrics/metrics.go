package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "portal_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	snapshotFetchTotal   *prometheus.CounterVec
	snapshotFetchLatency *prometheus.HistogramVec

	reconcileTotal    *prometheus.CounterVec
	reconcileResidual prometheus.Counter

	receiptExportTotal   *prometheus.CounterVec
	receiptExportLatency *prometheus.HistogramVec

	paymentEncodeTotal   *prometheus.CounterVec
	paymentRecordedTotal prometheus.Counter

	readingSubmitTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		snapshotFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_fetch_total",
				Help: "Total accounting snapshot fetches by region and result",
			},
			[]string{"region", "result"},
		)
		snapshotFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "snapshot_fetch_latency_seconds",
				Help:    "Accounting snapshot fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"region", "result"},
		)

		reconcileTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_total",
				Help: "Total debt reconciliations by result",
			},
			[]string{"result"},
		)
		reconcileResidual = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_residual_total",
				Help: "Total reconciliations that required an unexplained residual line",
			},
		)

		receiptExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_export_total",
				Help: "Total receipt export operations by format and result",
			},
			[]string{"format", "result"},
		)
		receiptExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "receipt_export_latency_seconds",
				Help:    "Receipt export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		paymentEncodeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_encode_total",
				Help: "Total payment request encodings by result",
			},
			[]string{"result"},
		)
		paymentRecordedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_recorded_total",
				Help: "Total recorded payments",
			},
		)

		readingSubmitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_submit_total",
				Help: "Total meter reading submissions by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			snapshotFetchTotal,
			snapshotFetchLatency,
			reconcileTotal,
			reconcileResidual,
			receiptExportTotal,
			receiptExportLatency,
			paymentEncodeTotal,
			paymentRecordedTotal,
			readingSubmitTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveSnapshotFetch records snapshot fetch duration and result.
func ObserveSnapshotFetch(region, result string, duration time.Duration) {
	if region == "" {
		region = "default"
	}
	if result == "" {
		result = resultSuccess
	}
	if snapshotFetchTotal != nil {
		snapshotFetchTotal.WithLabelValues(region, result).Inc()
	}
	if snapshotFetchLatency != nil {
		snapshotFetchLatency.WithLabelValues(region, result).Observe(duration.Seconds())
	}
}

// IncReconcile increments the reconciliation counter.
func IncReconcile(result string) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileTotal != nil {
		reconcileTotal.WithLabelValues(result).Inc()
	}
}

// IncReconcileResidual counts reconciliations that emitted a residual line.
func IncReconcileResidual() {
	if reconcileResidual != nil {
		reconcileResidual.Inc()
	}
}

// ObserveReceiptExport records export latency by format and result.
func ObserveReceiptExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if receiptExportTotal != nil {
		receiptExportTotal.WithLabelValues(format, result).Inc()
	}
	if receiptExportLatency != nil {
		receiptExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncPaymentEncode increments the payment request encoding counter.
func IncPaymentEncode(result string) {
	if result == "" {
		result = resultSuccess
	}
	if paymentEncodeTotal != nil {
		paymentEncodeTotal.WithLabelValues(result).Inc()
	}
}

// IncPaymentRecorded increments the recorded payment counter.
func IncPaymentRecorded() {
	if paymentRecordedTotal != nil {
		paymentRecordedTotal.Inc()
	}
}

// IncReadingSubmit increments the reading submission counter.
func IncReadingSubmit(result string) {
	if result == "" {
		result = resultSuccess
	}
	if readingSubmitTotal != nil {
		readingSubmitTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
