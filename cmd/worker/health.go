package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

const healthAddr = ":8081"

// breakerState is satisfied by the Redis broker.
type breakerState interface {
	State() gobreaker.State
}

// newHealthMux serves liveness, readiness and metrics. Readiness fails while the
// publish breaker is open so the worker is taken out of rotation until Redis recovers.
func newHealthMux(breaker breakerState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		state := breaker.State()
		w.Header().Set("X-Breaker-State", state.String())
		if state == gobreaker.StateOpen {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
