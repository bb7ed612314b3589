// Package metrics exposes the server's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthSuccess counts successful logins and registrations.
	AuthSuccess = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_auth_success_total",
		Help: "Successful authentications by operation.",
	}, []string{"operation"})

	// AuthFailures counts rejected logins and registrations by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_auth_failures_total",
		Help: "Failed authentications by operation and reason.",
	}, []string{"operation", "reason"})

	// DocumentOps counts resource operations by collection and operation.
	DocumentOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_document_operations_total",
		Help: "Document operations by collection and operation.",
	}, []string{"collection", "operation"})

	// SuggestRequests counts suggestion requests by entry kind.
	SuggestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_suggest_requests_total",
		Help: "Suggestion requests by entry kind.",
	}, []string{"kind"})
)
