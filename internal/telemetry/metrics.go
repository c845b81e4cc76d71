package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "signups_total",
		Help:      "Signup requests by outcome (ok, bot).",
	}, []string{"outcome"})

	OTPVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "otp_verifications_total",
		Help:      "OTP verification attempts by outcome (success, invalid, throttled).",
	}, []string{"outcome"})

	OfferDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "offer_decisions_total",
		Help:      "Offer approval decisions by actor role and action.",
	}, []string{"role", "action"})

	ApplicationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "application_decisions_total",
		Help:      "Application approval decisions by actor role and action.",
	}, []string{"role", "action"})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "audit_write_failures_total",
		Help:      "Audit log writes that failed and were dropped.",
	})

	HTTPRequestsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "internship_portal",
		Name:      "http_requests_throttled_total",
		Help:      "Requests rejected by the auth-surface rate limiter.",
	})
)
