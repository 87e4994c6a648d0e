// Package metrics exposes Prometheus counters for the message service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectedSenders = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matthias_connected_senders",
		Help: "Number of senders that completed the Connect handshake",
	})

	envelopesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matthias_envelopes_total",
			Help: "Total envelopes received by kind",
		},
		[]string{"kind"},
	)

	rejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matthias_rejected_total",
			Help: "Total envelopes rejected by reason",
		},
		[]string{"reason"}, // invalid_client|invalid_password|unauthenticated|out_of_range|wrong_kind|not_owner|internal
	)

	ledgerLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matthias_ledger_length",
		Help: "Number of messages in the ledger",
	})

	uploadedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matthias_uploaded_bytes_total",
		Help: "Total bytes accepted into the byte-store",
	})
)

func init() {
	prometheus.MustRegister(
		connectedSenders,
		envelopesTotal,
		rejectedTotal,
		ledgerLength,
		uploadedBytesTotal,
	)
}

func IncEnvelope(kind string)   { envelopesTotal.WithLabelValues(kind).Inc() }
func IncRejected(reason string) { rejectedTotal.WithLabelValues(reason).Inc() }
func SetConnected(n int)        { connectedSenders.Set(float64(n)) }
func SetLedgerLength(n int)     { ledgerLength.Set(float64(n)) }
func AddUploadedBytes(n int)    { uploadedBytesTotal.Add(float64(n)) }
