package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncWebhookReceived is a no-op.
func (n *NoopRecorder) IncWebhookReceived(outcome string) {}

// ObserveWebhookDuration is a no-op.
func (n *NoopRecorder) ObserveWebhookDuration(duration time.Duration) {}

// IncUserUpserted is a no-op.
func (n *NoopRecorder) IncUserUpserted() {}

// IncBookingCreated is a no-op.
func (n *NoopRecorder) IncBookingCreated() {}

// IncBookingStatusChanged is a no-op.
func (n *NoopRecorder) IncBookingStatusChanged(status string) {}

// IncAvailabilityCacheHit is a no-op.
func (n *NoopRecorder) IncAvailabilityCacheHit() {}

// IncAvailabilityCacheMiss is a no-op.
func (n *NoopRecorder) IncAvailabilityCacheMiss() {}

// IncContactReceived is a no-op.
func (n *NoopRecorder) IncContactReceived() {}

// IncTestimonialSubmitted is a no-op.
func (n *NoopRecorder) IncTestimonialSubmitted() {}
