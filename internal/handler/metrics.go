package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/TimFooLabs/drtimfoo-api/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, outcome := range sortedKeys(snap.WebhookReceived) {
		writeMetric(w, "drtimfoo_webhooks_received_total{outcome=%q} %d\n", outcome, snap.WebhookReceived[outcome])
	}
	writeMetric(w, "drtimfoo_webhook_duration_seconds_count %d\n", snap.WebhookDurationCount)
	writeMetric(w, "drtimfoo_webhook_duration_seconds_sum %.6f\n", float64(snap.WebhookDurationTotalNs)/1e9)
	writeMetric(w, "drtimfoo_users_upserted_total %d\n", snap.UsersUpserted)

	writeMetric(w, "drtimfoo_bookings_created_total %d\n", snap.BookingsCreated)
	for _, status := range sortedKeys(snap.BookingStatusChanges) {
		writeMetric(w, "drtimfoo_booking_status_changes_total{status=%q} %d\n", status, snap.BookingStatusChanges[status])
	}
	writeMetric(w, "drtimfoo_availability_cache_hits_total %d\n", snap.AvailabilityCacheHits)
	writeMetric(w, "drtimfoo_availability_cache_misses_total %d\n", snap.AvailabilityCacheMisses)

	writeMetric(w, "drtimfoo_contacts_received_total %d\n", snap.ContactsReceived)
	writeMetric(w, "drtimfoo_testimonials_submitted_total %d\n", snap.TestimonialsSubmitted)
}

// sortedKeys keeps label ordering stable between scrapes.
func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
