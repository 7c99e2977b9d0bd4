package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total successful registrations",
		},
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total login attempts",
		},
		[]string{"result"}, // ok|unauthorized
	)
	ContactOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_operations_total",
			Help: "Total successful contact mutations",
		},
		[]string{"op"}, // add|update|delete|set_public
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(ContactOps)
}
