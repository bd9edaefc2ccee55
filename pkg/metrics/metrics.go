package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelbook", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelbook", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HotelOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelbook", Name: "hotel_operations_total", Help: "Owner hotel operations by outcome."},
		[]string{"op", "outcome"}, // outcome: ok|invalid|not_found|relay_timeout|relay_error|error
	)
	MediaRelayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelbook", Name: "media_relay_total", Help: "Images relayed to the media host by outcome."},
		[]string{"host", "outcome"},
	)
	MediaRelayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelbook", Name: "media_relay_duration_seconds",
			Help:    "Duration of a single image upload to the media host.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HotelOperations)
	reg.MustRegister(MediaRelayed)
	reg.MustRegister(MediaRelayLatency)
}

// ObserveHotelOp records the outcome of one owner operation.
func ObserveHotelOp(op, outcome string) {
	HotelOperations.WithLabelValues(op, outcome).Inc()
}
