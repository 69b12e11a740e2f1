package metrics

import "github.com/prometheus/client_golang/prometheus"

// SecretaryMetrics exposes counters and histograms for the booking assistant.
type SecretaryMetrics struct {
	messagesTotal      *prometheus.CounterVec
	bookingsTotal      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	slotLookups        *prometheus.CounterVec
	remindersTotal     *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
}

func NewSecretaryMetrics(reg prometheus.Registerer) *SecretaryMetrics {
	m := &SecretaryMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "secretary",
			Name:      "messages_total",
			Help:      "Chat messages processed, by resulting intent",
		}, []string{"intent"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "validation_failures_total",
			Help:      "Rejected booking requests by failed rule or field",
		}, []string{"kind"}),
		slotLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "slots",
			Name:      "lookups_total",
			Help:      "Free-slot lookups, split by cache hit",
		}, []string{"cache"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "reminders",
			Name:      "processed_total",
			Help:      "Due reminders processed by resulting status",
		}, []string{"status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.bookingsTotal, m.validationFailures, m.slotLookups, m.remindersTotal, m.httpLatency)
	return m
}

// ObserveIntent implements secretary.Observer.
func (m *SecretaryMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(intent).Inc()
}

// ObserveBooking implements booking.Observer.
func (m *SecretaryMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *SecretaryMetrics) ObserveValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

// ObserveSlotLookup implements validation.SlotObserver.
func (m *SecretaryMetrics) ObserveSlotLookup(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.slotLookups.WithLabelValues(label).Inc()
}

func (m *SecretaryMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(status).Inc()
}

func (m *SecretaryMetrics) ObserveHTTP(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, status).Observe(seconds)
}
