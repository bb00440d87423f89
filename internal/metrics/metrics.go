// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Webhook pipeline metrics
	IncWebhookReceived(outcome string) // outcome: "applied", "ignored", "duplicate", "rejected", "failed"
	IncUserUpserted()
	ObserveWebhookDuration(duration time.Duration)

	// Booking metrics
	IncBookingCreated()
	IncBookingStatusChanged(status string)
	IncAvailabilityCacheHit()
	IncAvailabilityCacheMiss()

	// Intake metrics
	IncContactReceived()
	IncTestimonialSubmitted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
