package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters for classifier outcomes and booking
// side effects.
type ConversationMetrics struct {
	classificationsTotal *prometheus.CounterVec
	turnsTotal           *prometheus.CounterVec
	bookingsTotal        *prometheus.CounterVec
	cancellationsTotal   *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		classificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "intent",
			Name:      "classifications_total",
			Help:      "Classifier outcomes by result kind",
		}, []string{"kind"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Dialogue turns processed, by the state they arrived in",
		}, []string{"state"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "bookings",
			Name:      "booked_total",
			Help:      "Booking attempts by status",
		}, []string{"status"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Cancellation attempts by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.classificationsTotal, m.turnsTotal, m.bookingsTotal, m.cancellationsTotal)
	return m
}

func (m *ConversationMetrics) ObserveClassification(kind string) {
	if m == nil {
		return
	}
	m.classificationsTotal.WithLabelValues(kind).Inc()
}

func (m *ConversationMetrics) ObserveTurn(state string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state).Inc()
}

func (m *ConversationMetrics) ObserveBooking(success bool) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(statusLabel(success)).Inc()
}

func (m *ConversationMetrics) ObserveCancellation(success bool) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
