package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Total number of reservations created.",
		},
	)
	reservationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_cancelled_total",
			Help: "Total number of reservations cancelled.",
		},
	)
	ticketsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total number of tickets issued.",
		},
	)
	checkins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Total number of completed check-ins.",
		},
	)
	kafkaErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Total number of Kafka-related errors.",
		},
		[]string{"component", "operation"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		reservationsCreated,
		reservationsCancelled,
		ticketsIssued,
		checkins,
		kafkaErrors,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func ReservationCreated() { reservationsCreated.Inc() }

func ReservationCancelled() { reservationsCancelled.Inc() }

func TicketsIssued(n int) { ticketsIssued.Add(float64(n)) }

func CheckinDone() { checkins.Inc() }

func KafkaError(component, op string) { kafkaErrors.WithLabelValues(component, op).Inc() }
