// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignupTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signup_total",
			Help: "Cumulative number of accepted provider signups.",
		})

	SignupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signup_errors_total",
			Help: "Cumulative number of provider signup rejections.",
		})

	HandoffTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_handoff_total",
			Help: "Cumulative number of profile hand-off attempts.",
		})

	HandoffErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_handoff_errors_total",
			Help: "Cumulative number of failed profile hand-offs.",
		})

	DraftsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "drafts_pending",
			Help: "Profile drafts currently awaiting a confirmation callback.",
		})

	ChatRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Cumulative number of assistant chat requests.",
		})

	ChatFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_fallbacks_total",
			Help: "Cumulative number of chat replies served from the fallback string.",
		})
)

func init() {
	prometheus.MustRegister(
		SignupTotal,
		SignupErrorsTotal,
		HandoffTotal,
		HandoffErrorsTotal,
		DraftsPending,
		ChatRequestsTotal,
		ChatFallbacksTotal,
	)
}
