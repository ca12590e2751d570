package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcclub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcclub",
			Name:      "reservations_total",
			Help:      "Reservation operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	ledgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcclub",
			Name:      "ledger_entries_total",
			Help:      "Ledger entries appended, by kind.",
		},
		[]string{"kind"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, ledgerEntries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation records a create/cancel attempt outcome, e.g.
// ("create", "ok") or ("create", "slot_conflict").
func IncReservation(operation, outcome string) {
	reservations.WithLabelValues(operation, outcome).Inc()
}

// IncLedgerEntry records an appended entry by kind.
func IncLedgerEntry(kind string) {
	ledgerEntries.WithLabelValues(kind).Inc()
}
