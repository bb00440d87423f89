package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	WebhookReceived         map[string]uint64
	WebhookDurationCount    uint64
	WebhookDurationTotalNs  int64
	UsersUpserted           uint64
	BookingsCreated         uint64
	BookingStatusChanges    map[string]uint64
	AvailabilityCacheHits   uint64
	AvailabilityCacheMisses uint64
	ContactsReceived        uint64
	TestimonialsSubmitted   uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                      sync.Mutex
	webhookReceived         map[string]uint64
	bookingStatusChanges    map[string]uint64
	webhookDurationCount    uint64
	webhookDurationTotalNs  int64
	usersUpserted           uint64
	bookingsCreated         uint64
	availabilityCacheHits   uint64
	availabilityCacheMisses uint64
	contactsReceived        uint64
	testimonialsSubmitted   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		webhookReceived:      make(map[string]uint64),
		bookingStatusChanges: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	received := make(map[string]uint64, len(m.webhookReceived))
	for k, v := range m.webhookReceived {
		received[k] = v
	}
	statusChanges := make(map[string]uint64, len(m.bookingStatusChanges))
	for k, v := range m.bookingStatusChanges {
		statusChanges[k] = v
	}

	return Snapshot{
		WebhookReceived:         received,
		WebhookDurationCount:    atomic.LoadUint64(&m.webhookDurationCount),
		WebhookDurationTotalNs:  atomic.LoadInt64(&m.webhookDurationTotalNs),
		UsersUpserted:           atomic.LoadUint64(&m.usersUpserted),
		BookingsCreated:         atomic.LoadUint64(&m.bookingsCreated),
		BookingStatusChanges:    statusChanges,
		AvailabilityCacheHits:   atomic.LoadUint64(&m.availabilityCacheHits),
		AvailabilityCacheMisses: atomic.LoadUint64(&m.availabilityCacheMisses),
		ContactsReceived:        atomic.LoadUint64(&m.contactsReceived),
		TestimonialsSubmitted:   atomic.LoadUint64(&m.testimonialsSubmitted),
	}
}

// IncWebhookReceived increments the webhook counter for an outcome.
func (m *InMemoryRecorder) IncWebhookReceived(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookReceived[outcome]++
}

// ObserveWebhookDuration records webhook handling duration.
func (m *InMemoryRecorder) ObserveWebhookDuration(duration time.Duration) {
	atomic.AddUint64(&m.webhookDurationCount, 1)
	atomic.AddInt64(&m.webhookDurationTotalNs, duration.Nanoseconds())
}

// IncUserUpserted increments the user upsert counter.
func (m *InMemoryRecorder) IncUserUpserted() {
	atomic.AddUint64(&m.usersUpserted, 1)
}

// IncBookingCreated increments the booking created counter.
func (m *InMemoryRecorder) IncBookingCreated() {
	atomic.AddUint64(&m.bookingsCreated, 1)
}

// IncBookingStatusChanged increments the counter for a target status.
func (m *InMemoryRecorder) IncBookingStatusChanged(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingStatusChanges[status]++
}

// IncAvailabilityCacheHit increments the availability cache hit counter.
func (m *InMemoryRecorder) IncAvailabilityCacheHit() {
	atomic.AddUint64(&m.availabilityCacheHits, 1)
}

// IncAvailabilityCacheMiss increments the availability cache miss counter.
func (m *InMemoryRecorder) IncAvailabilityCacheMiss() {
	atomic.AddUint64(&m.availabilityCacheMisses, 1)
}

// IncContactReceived increments the contact form counter.
func (m *InMemoryRecorder) IncContactReceived() {
	atomic.AddUint64(&m.contactsReceived, 1)
}

// IncTestimonialSubmitted increments the testimonial counter.
func (m *InMemoryRecorder) IncTestimonialSubmitted() {
	atomic.AddUint64(&m.testimonialsSubmitted, 1)
}
